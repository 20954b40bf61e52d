package jobs

import (
	"log"

	"github.com/lawqena/exam_portal/exam"
)

// ReapFinishedSessions sweeps completed and torn-down exam sessions out of
// the in-memory registry. Live countdowns are never touched.
func ReapFinishedSessions() {
	reaped := exam.Sessions.ReapFinished()
	if reaped > 0 {
		log.Printf("Reaped %d finished exam session(s)", reaped)
	}
}
