// Package graph defines the design graph types for Lignin Terrain.
// The design graph is an immutable DAG of blocks, seams, transforms,
// and scenes that represents an SDF-shaped voxel terrain layout.
package graph
