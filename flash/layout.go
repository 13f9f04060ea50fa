package flash

// Default memory map of the gauge's microcontroller.
const (
	// BaseAddress is the first address of the flash array
	BaseAddress uint32 = 0x08000000

	// Size is the size of the flash array in bytes (128 KiB)
	Size uint32 = 0x20000

	// PageSize is the erase granularity
	PageSize uint32 = 0x800

	// AppAddress is where the application image and its vector table start
	AppAddress uint32 = 0x08010000

	// ConfigAddress is the last page, holding the configuration record
	ConfigAddress uint32 = BaseAddress + Size - PageSize

	// DoubleWord is the programming granularity in bytes
	DoubleWord = 8

	// Erased is the value of an erased byte
	Erased byte = 0xFF
)

// Layout describes a linear flash address space.
type Layout struct {
	Base       uint32
	Size       uint32
	PageSize   uint32
	AppBase    uint32
	ConfigBase uint32
}

// DefaultLayout returns the gauge's memory map.
func DefaultLayout() Layout {
	return Layout{
		Base:       BaseAddress,
		Size:       Size,
		PageSize:   PageSize,
		AppBase:    AppAddress,
		ConfigBase: ConfigAddress,
	}
}

// End returns the first address past the flash array.
func (l Layout) End() uint32 {
	return l.Base + l.Size
}

// Contains reports whether [addr, addr+n) lies inside the array.
func (l Layout) Contains(addr uint32, n int) bool {
	if n < 0 || addr < l.Base {
		return false
	}
	return uint64(addr)+uint64(n) <= uint64(l.End())
}

// PageStart returns the address of the page containing addr.
func (l Layout) PageStart(addr uint32) uint32 {
	return addr - (addr-l.Base)%l.PageSize
}

// AppRegionSize returns the room available for an application image.
func (l Layout) AppRegionSize() uint32 {
	return l.ConfigBase - l.AppBase
}
