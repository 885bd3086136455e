package traps

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// TrapCode describes a trap or test outcome code raised by an exception vector, an interrupt or a test stub. The
// numeric values are fixed by the trap numbering contract and must not be changed.
type TrapCode uint8

const (
	// Start marks the beginning of a test.
	Start TrapCode = 0
	// Undef is raised for an undefined instruction.
	Undef TrapCode = 2
	// AlignmentFault is raised for a misaligned memory access.
	AlignmentFault TrapCode = 3
	// DataReadFault is raised when a data read aborts.
	DataReadFault TrapCode = 4
	// DataWriteFault is raised when a data write aborts.
	DataWriteFault TrapCode = 5
	// InstructionPermissionAbort is raised when an instruction fetch violates access permissions.
	InstructionPermissionAbort TrapCode = 8
	// Timer0 is raised by the first timer interrupt.
	Timer0 TrapCode = 9
	// Timer1 is raised by the second timer interrupt.
	Timer1 TrapCode = 10
	// Timer2 is raised by the third timer interrupt.
	Timer2 TrapCode = 11
	// Timer3 is raised by the fourth timer interrupt.
	Timer3 TrapCode = 12
	// Task1 is raised when the first task is switched in.
	Task1 TrapCode = 14
	// Task2 is raised when the second task is switched in.
	Task2 TrapCode = 15
	// PrivilegedData is raised when unprivileged code touches privileged data.
	PrivilegedData TrapCode = 16
	// PublicData is raised on an access to public data under memory protection.
	PublicData TrapCode = 17
	// TableWalk is raised when a page table walk faults.
	TableWalk TrapCode = 18
)

// Category describes the family a TrapCode belongs to.
type Category string

const (
	// CategoryControl describes codes which drive the test flow rather than report a trap.
	CategoryControl Category = "control"
	// CategoryFault describes synchronous CPU faults.
	CategoryFault Category = "fault"
	// CategoryInterrupt describes asynchronous timer interrupts.
	CategoryInterrupt Category = "interrupt"
	// CategoryScheduling describes task switch notifications.
	CategoryScheduling Category = "scheduling"
	// CategoryProtection describes memory protection and page table walk faults.
	CategoryProtection Category = "protection"
)

// headerPrefix is the prefix the trap names carry in the C header they were defined in.
const headerPrefix = "TESTING_"

// trapCodeInfo describes the table entry for a single TrapCode.
type trapCodeInfo struct {
	name     string
	category Category
}

// trapCodeTable maps every defined TrapCode to its name and category. It is never written to after package
// initialization, so concurrent reads need no synchronization.
var trapCodeTable = map[TrapCode]trapCodeInfo{
	Start:                      {"START", CategoryControl},
	Undef:                      {"UNDEF", CategoryFault},
	AlignmentFault:             {"ALIGNMENT_FAULT", CategoryFault},
	DataReadFault:              {"DATA_READ_FAULT", CategoryFault},
	DataWriteFault:             {"DATA_WRITE_FAULT", CategoryFault},
	InstructionPermissionAbort: {"INSTRUCTION_PERMISSION_ABORT", CategoryFault},
	Timer0:                     {"TIMER0", CategoryInterrupt},
	Timer1:                     {"TIMER1", CategoryInterrupt},
	Timer2:                     {"TIMER2", CategoryInterrupt},
	Timer3:                     {"TIMER3", CategoryInterrupt},
	Task1:                      {"TASK1", CategoryScheduling},
	Task2:                      {"TASK2", CategoryScheduling},
	PrivilegedData:             {"PRIVILEGED_DATA", CategoryProtection},
	PublicData:                 {"PUBLIC_DATA", CategoryProtection},
	TableWalk:                  {"TABLE_WALK", CategoryProtection},
}

// trapCodesByName is the reverse lookup of trapCodeTable.
var trapCodesByName = func() map[string]TrapCode {
	m := make(map[string]TrapCode, len(trapCodeTable))
	for code, info := range trapCodeTable {
		m[info.name] = code
	}
	return m
}()

// IsValid returns true if the TrapCode is one of the defined codes. Reserved values are not valid.
func (c TrapCode) IsValid() bool {
	_, ok := trapCodeTable[c]
	return ok
}

// String returns the name of the TrapCode, or a placeholder naming the numeric value if it is not defined.
func (c TrapCode) String() string {
	if info, ok := trapCodeTable[c]; ok {
		return info.name
	}
	return fmt.Sprintf("RESERVED(%d)", uint8(c))
}

// Category returns the Category of the TrapCode, or an empty Category if it is not defined.
func (c TrapCode) Category() Category {
	return trapCodeTable[c].category
}

// Describe returns the name and numeric value of the TrapCode, e.g. "TIMER2 (11)".
func (c TrapCode) Describe() string {
	return fmt.Sprintf("%s (%d)", c.String(), uint8(c))
}

// MarshalText encodes the TrapCode as its name. Reserved values cannot be encoded.
func (c TrapCode) MarshalText() ([]byte, error) {
	if !c.IsValid() {
		return nil, errors.WithStack(&UnknownTrapCodeError{Raw: int64(c)})
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a TrapCode from its name or decimal value.
func (c *TrapCode) UnmarshalText(text []byte) error {
	code, err := ParseTrapCode(string(text))
	if err != nil {
		return err
	}
	*c = code
	return nil
}

// UnmarshalJSON decodes a TrapCode from a JSON string holding its name or decimal value, or from a JSON number.
func (c *TrapCode) UnmarshalJSON(b []byte) error {
	// Leave the code untouched for null, like the standard decoder does
	if string(b) == "null" {
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return errors.WithStack(err)
		}
		return c.UnmarshalText([]byte(s))
	}

	var raw int64
	if err := json.Unmarshal(b, &raw); err != nil {
		return errors.Wrapf(err, "trap code %s is neither a name nor a decimal value", b)
	}
	code, err := Classify(raw)
	if err != nil {
		return err
	}
	*c = code
	return nil
}

// ParseTrapCode parses a TrapCode from a name (case-insensitive, with or without the TESTING_ prefix) or a decimal
// value. Returns an error if the string does not identify a defined TrapCode.
func ParseTrapCode(s string) (TrapCode, error) {
	trimmed := strings.TrimSpace(s)

	// Numeric values go through the classifier so reserved values are rejected the same way
	if raw, err := strconv.ParseInt(trimmed, 10, 64); err == nil {
		return Classify(raw)
	}

	name := strings.TrimPrefix(strings.ToUpper(trimmed), headerPrefix)
	if code, ok := trapCodesByName[name]; ok {
		return code, nil
	}
	return 0, errors.Errorf("unknown trap code name %q", s)
}
