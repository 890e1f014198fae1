package models

import "time"

// Completion is a question about an item and the answer the generation service gave.
type Completion struct {
	ID int64 `db:"id"`
	// ItemType is the wire name of the item type, e.g. "diamondpickaxe".
	ItemType string `db:"item_type"`
	// Order numbers the questions asked about an item type, starting from 0.
	Order         int64  `db:"order"`
	Question      string `db:"question"`
	Answer        string `db:"answer"`
	InitialAnswer string `db:"initial_answer"`
	TimeTakenMS   int64  `db:"time_taken_ms"`
	// Created is an RFC 3339 timestamp with millisecond precision.
	Created string `db:"created"`
}

// TimeTaken returns the generation duration.
func (c Completion) TimeTaken() time.Duration {
	return time.Duration(c.TimeTakenMS) * time.Millisecond
}
