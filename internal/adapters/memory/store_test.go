package memory_test

import (
	"testing"

	"github.com/gradedesk/gradedesk/internal/adapters/memory"
	"github.com/gradedesk/gradedesk/internal/workflows"
)

func TestMemoryStore_Contract(t *testing.T) {
	workflows.RunStoreContract(t, memory.NewStore())
}
