package audit

import (
	"fmt"

	"github.com/usefloww/floww/internal/core"
)

// Build constructs an auditor from config values. Disabled auditing
// yields a noop auditor so callers never need a nil check.
func Build(enabled bool, auditType, path string) (core.Auditor, error) {
	if !enabled {
		return NewNoopAuditor(), nil
	}
	switch auditType {
	case "", "memory":
		return NewInMemoryAuditor(), nil
	case "file":
		if path == "" {
			return nil, fmt.Errorf("file auditor requires a 'path'")
		}
		return NewFileAuditor(path)
	default:
		return nil, fmt.Errorf("unknown audit type '%s'", auditType)
	}
}
