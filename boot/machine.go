package boot

// Machine is the processor control needed to hand over to the application.
// On hardware Jump never returns.
type Machine interface {
	DisableInterrupts()
	DeinitPeripherals()
	ClearInterrupts()
	ResetSysTick()
	EnableInterrupts()
	SetStackPointer(sp uint32)
	Jump(entry uint32)
}

// Recorder is a Machine that records the teardown sequence instead of
// performing it. It is used by the simulator and by tests.
type Recorder struct {
	Steps        []string
	StackPointer uint32
	Entry        uint32
	Jumps        int
}

func (r *Recorder) DisableInterrupts() { r.Steps = append(r.Steps, "disable-interrupts") }
func (r *Recorder) DeinitPeripherals() { r.Steps = append(r.Steps, "deinit-peripherals") }
func (r *Recorder) ClearInterrupts()   { r.Steps = append(r.Steps, "clear-interrupts") }
func (r *Recorder) ResetSysTick()      { r.Steps = append(r.Steps, "reset-systick") }
func (r *Recorder) EnableInterrupts()  { r.Steps = append(r.Steps, "enable-interrupts") }

func (r *Recorder) SetStackPointer(sp uint32) {
	r.Steps = append(r.Steps, "set-stack-pointer")
	r.StackPointer = sp
}

func (r *Recorder) Jump(entry uint32) {
	r.Steps = append(r.Steps, "jump")
	r.Entry = entry
	r.Jumps++
}

// AnalogInput reads the attach-detect voltage.
type AnalogInput interface {
	ReadVolts() (float64, error)
}

// FixedVolts is an AnalogInput that always reads the same value.
type FixedVolts float64

// ReadVolts returns v.
func (v FixedVolts) ReadVolts() (float64, error) { return float64(v), nil }
