// Package content holds the poll pool and the rotation engine.
//
// Items are delivered in pool order. A Tracker remembers which ids went out
// since the last reset; PickNext returns the first item the tracker has not
// seen, so a run that fails before recording will retry the same item.
package content
