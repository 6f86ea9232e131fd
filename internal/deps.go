package internal

import (
	"goobert/stats-api/internal/service"
)

// Deps is handed to every HTTP handler. The stats service itself is only
// reachable through Loop.
type Deps struct {
	Loop    *service.Loop
	Exports *service.ScheduledExport
}
