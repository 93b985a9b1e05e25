package gb

import "math"

// disabledTime is the trigger time of an event that is not armed.
const disabledTime uint64 = math.MaxUint64

type eventID int

// Scheduled hardware events. When two events are due on the same cycle they
// are dispatched in this order.
const (
	eventEnd eventID = iota
	eventBlit
	eventSerial
	eventOAM
	eventTIMA
	eventLYC
	eventInterrupts
	numEvents
)

var eventNames = [numEvents]string{"end", "blit", "serial", "oam", "tima", "lyc", "interrupts"}

func (id eventID) String() string {
	if id < 0 || id >= numEvents {
		return "unknown"
	}
	return eventNames[id]
}

// scheduler keeps the next trigger cycle of every hardware unit. It holds no
// unit logic, the bus dispatches the minimum and the unit rearms itself.
type scheduler struct {
	times [numEvents]uint64
}

func (s *scheduler) reset() {
	for i := range s.times {
		s.times[i] = disabledTime
	}
}

func (s *scheduler) set(id eventID, t uint64) {
	s.times[id] = t
}

func (s *scheduler) time(id eventID) uint64 {
	return s.times[id]
}

// next returns the earliest armed event, lowest id first on ties.
func (s *scheduler) next() (eventID, uint64) {
	id, min := eventEnd, s.times[eventEnd]
	for i := eventEnd + 1; i < numEvents; i++ {
		if s.times[i] < min {
			id, min = i, s.times[i]
		}
	}
	return id, min
}

func (s *scheduler) minTime() uint64 {
	_, t := s.next()
	return t
}

// rebase moves every armed event dec cycles earlier.
func (s *scheduler) rebase(dec uint64) {
	for i, t := range s.times {
		if t != disabledTime {
			s.times[i] = t - dec
		}
	}
}
