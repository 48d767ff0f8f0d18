package model

// Package model defines domain data structures shared by the subtitle
// services and the CLI: caption tracks, subtitle download tasks, playlist
// entities, and status enums with explicit state transitions.
