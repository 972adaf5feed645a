package models

import "github.com/google/uuid"

// assignID gán UUID mới nếu bản ghi chưa có ID.
func assignID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}
