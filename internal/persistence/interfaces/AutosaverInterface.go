package interfaces

import "time"

type AutosaverInterface interface {
	Init()
	Stop()
	Restore() error
	Persist() error
	LastSaved() time.Time
}
