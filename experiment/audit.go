package experiment

import (
	"errors"
	"sync/atomic"
)

// errAuditTorn means a worker's log does not alternate enter/leave, which
// can only happen if the loop itself was changed.
var errAuditTorn = errors.New("experiment: audit log not in enter/leave pairs")

// auditLog records, for one worker, a globally ordered ticket taken just
// after each successful acquire and just before each release.
//
// Tickets come from a sequentially consistent counter, so taking them
// fences the critical section. Audit runs therefore check mutual exclusion
// of the flag, not the ordering of the counter.
type auditLog struct {
	tickets []uint64
}

func newAuditLog(increments uint32) *auditLog {
	return &auditLog{tickets: make([]uint64, 0, 2*int(increments))}
}

func (l *auditLog) enter(t *atomic.Uint64) {
	l.tickets = append(l.tickets, t.Add(1))
}

func (l *auditLog) leave(t *atomic.Uint64) {
	l.tickets = append(l.tickets, t.Add(1))
}

// countOverlaps replays every worker's [enter, leave] intervals in global
// ticket order and returns how many critical sections began while another
// was still open. Zero means mutual exclusion held for the whole run.
func countOverlaps(logs []*auditLog, issued uint64) (uint64, error) {
	// events[t] is +1 for an enter ticket, -1 for a leave ticket.
	events := make([]int8, issued+1)
	for _, l := range logs {
		if len(l.tickets)%2 != 0 {
			return 0, errAuditTorn
		}
		for i := 0; i < len(l.tickets); i += 2 {
			in, out := l.tickets[i], l.tickets[i+1]
			if in >= out || out > issued {
				return 0, errAuditTorn
			}
			events[in] = 1
			events[out] = -1
		}
	}

	var depth int
	var overlaps uint64
	for _, e := range events {
		switch e {
		case 1:
			if depth > 0 {
				overlaps++
			}
			depth++
		case -1:
			depth--
		}
	}
	return overlaps, nil
}
