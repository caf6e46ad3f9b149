// Package viz turns quantum states and gate lists into a live quarkgl scene.
//
// An Engine owns one scene and three keyed registries of subtrees: Bloch
// indicators ("qubit_<i>"), gate blocks ("gate_<i>") and amplitude bars
// ("bar_<i>"). Every data update rebuilds its registry wholesale: the old
// subtrees are removed before any new one is attached.
//
// Engine methods are not safe for concurrent use. Data updates and Tick must
// come from the same goroutine; results produced elsewhere are handed over
// through a channel and applied between frames.
package viz
