package flashplan

import (
	"bytes"
	"fmt"
)

// LinkerScript renders the memory definitions for the plan: a FLASH region
// covering only the code range, the RAM region, and the EEPROM symbols the
// runtime storage driver reads, so the reserved page count exists in exactly
// one place. With AssertOverlap set it also emits a link-time check that the
// loaded .data image stays below the storage boundary.
func (p *Plan) LinkerScript() []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "/* Generated by flashplan. Do not edit. */\n")
	fmt.Fprintf(&buf, "MEMORY\n{\n")
	fmt.Fprintf(&buf, "  FLASH : ORIGIN = 0x%08x, LENGTH = %d\n", p.Code.Start, p.Code.Size())
	fmt.Fprintf(&buf, "  RAM : ORIGIN = 0x%08x, LENGTH = %d\n", p.RAM.Start, p.RAM.Size())
	fmt.Fprintf(&buf, "}\n")

	if p.ReservedPages > 0 {
		fmt.Fprintf(&buf, "\n/* Emulated EEPROM, %d pages at the top of flash. */\n", p.ReservedPages)
		fmt.Fprintf(&buf, "_eeprom_start = 0x%08x;\n", p.Storage.Start)
		fmt.Fprintf(&buf, "_page_size = %d;\n", p.PageSize)
		fmt.Fprintf(&buf, "_eeprom_pages = %d;\n", p.ReservedPages)
	}

	if p.AssertOverlap && p.ReservedPages > 0 {
		fmt.Fprintf(&buf, "\nASSERT(_sidata + (_edata - _sdata) <= _eeprom_start,\n")
		fmt.Fprintf(&buf, "  \"code and data overflow into the emulated EEPROM region\")\n")
	}

	return buf.Bytes()
}
