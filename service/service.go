package service

import (
	"airwatch/state"

	"gorm.io/gorm"
)

// Services is the global service container
type Services struct {
	Record *RecordService
}

// GlobalServices is the global service instance
var GlobalServices *Services

// InitServices initializes all services
func InitServices(db *gorm.DB, fetcher Fetcher, appState *state.AppState, threshold float64, refreshMode string) {
	GlobalServices = &Services{
		Record: NewRecordService(db, fetcher, appState, threshold, refreshMode),
	}
}
