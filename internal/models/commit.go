package models

import "time"

// Commit — неизменяемая запись истории: откат создаёт новый коммит,
// история не переписывается.
type Commit struct {
	Hash    string    `json:"hash"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
	Message string    `json:"message"`
}
