package dockyard

import (
	"github.com/ehrlich-b/dockyard/internal/constants"
	"github.com/ehrlich-b/dockyard/internal/sysv"
	"github.com/ehrlich-b/dockyard/internal/uapi"
)

// TestHarness wires a sysv.MockFacade and a fresh uapi.SharedState together
// so package-external tests (cmd/* binaries, integration-style tests) can
// exercise belt/dock/session/express without any real IPC resources,
// mirroring the teacher's MockBackend-based test harness.
type TestHarness struct {
	Facade *sysv.MockFacade
	State  *uapi.SharedState
}

// NewTestHarness builds a harness sized per the given simulation bounds,
// with every mutex semaphore pre-seeded unlocked (value 1) and counting
// semaphores matching beltSlots.
func NewTestHarness(beltSlots, userRows int32) *TestHarness {
	facade := sysv.NewMockFacade(constants.SemTotal)
	facade.SeedSemaphore(constants.SemBeltMutex, 1)
	facade.SeedSemaphore(constants.SemDockMutex, 1)
	facade.SeedSemaphore(constants.SemEmptySlots, int(beltSlots))
	facade.SeedSemaphore(constants.SemFullSlots, 0)

	state := &uapi.SharedState{
		Header:       uapi.SharedHeader{Magic: constants.SharedMagic, Version: constants.SharedVersion},
		Running:      1,
		BeltCapacity: beltSlots,
		UserCapacity: userRows,
	}

	return &TestHarness{Facade: facade, State: state}
}
