// Package quarkgl provides a minimal, predictable software 3D engine for the
// state visualizer.
//
// QuarkGL is intended for visualization: meshes, line sets, anchored text labels
// and interactive views (orbit/zoom with damping). It is not a game engine and
// does not provide a GPU abstraction.
//
// Pipeline (fixed):
//
//	Scene graph → Frame snapshot → Transform → Projection → Clipping → Rasterization.
//
// A Frame captures the camera matrices once per display tick. The mesh pass
// (Renderer) and the text-overlay pass (LabelRenderer) both consume the same
// Frame, so labels never drift from the objects they are anchored to.
//
// Scene nodes live in a growable arena addressed by NodeID. Removing a node
// frees its whole subtree; freed slots are reused by later inserts.
package quarkgl
