package system

// Phase defines execution ordering within a single city-timeline update.
// Ordering is part of the contract: all mutation for a tick is deterministic
// given the table iteration order.
type Phase int

const (
	PhaseCities  Phase = iota // 0: every city, table order
	PhaseVehicles             // 1: every vehicle, table order
	PhaseClock                // 2: advance game time, raise epoch flags
	PhaseEpoch                // 3: five-minute → hour → day → week cascades
	PhaseCleanup              // 4: clear per-tick flags
	PhasePersist              // 5: batched archive writes
)

var phaseNames = [...]string{"cities", "vehicles", "clock", "epoch", "cleanup", "persist"}

func (p Phase) String() string {
	if int(p) >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "unknown"
}

// System is the interface every scheduler stage implements.
type System interface {
	Phase() Phase
	Update(ticks uint)
}
