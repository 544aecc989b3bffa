// Package model defines the data structures shared across the scopefix layers.
package model

// Path represents a file system path.
type Path string
