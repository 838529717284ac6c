package flashplan

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLinkerScriptRegions(t *testing.T) {
	requireT := require.New(t)

	plan, err := NewPlan(target(64*1024, 1024, 10))
	requireT.NoError(err)

	script := string(plan.LinkerScript())
	requireT.Contains(script, "FLASH : ORIGIN = 0x08000000, LENGTH = 55296")
	requireT.Contains(script, "RAM : ORIGIN = 0x20000000, LENGTH = 20480")
	requireT.Contains(script, "_eeprom_start = 0x0800d800;")
	requireT.Contains(script, "_page_size = 1024;")
	requireT.Contains(script, "_eeprom_pages = 10;")
	requireT.NotContains(script, "ASSERT")
}

func TestLinkerScriptAssert(t *testing.T) {
	requireT := require.New(t)

	tgt := target(64*1024, 1024, 20)
	tgt.AssertOverlap = true
	plan, err := NewPlan(tgt)
	requireT.NoError(err)

	script := string(plan.LinkerScript())
	requireT.Contains(script, "LENGTH = 45056")
	requireT.Contains(script, "_eeprom_pages = 20;")
	requireT.Contains(script, "ASSERT(_sidata + (_edata - _sdata) <= _eeprom_start")
}

func TestLinkerScriptNoStorage(t *testing.T) {
	requireT := require.New(t)

	tgt := target(128*1024, 1024, 0)
	tgt.AssertOverlap = true
	plan, err := NewPlan(tgt)
	requireT.NoError(err)

	script := string(plan.LinkerScript())
	requireT.Contains(script, "LENGTH = 131072")
	requireT.NotContains(script, "_eeprom_start")
	requireT.NotContains(script, "ASSERT")
}
