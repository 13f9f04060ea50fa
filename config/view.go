package config

import "gopkg.in/yaml.v3"

// View is the human-readable rendering of a Record.
type View struct {
	ID             string  `yaml:"id"`
	PermitTransmit bool    `yaml:"permit_transmit"`
	CoefAnemo      float32 `yaml:"coef_anemo"`
	CoefPluvio     float32 `yaml:"coef_pluvio"`
	TempA          float32 `yaml:"temp_a"`
	TempB          float32 `yaml:"temp_b"`
	Readings       struct {
		WindSpeed   float32 `yaml:"wind_speed"`
		Rain        float32 `yaml:"rain"`
		Temperature float32 `yaml:"temperature"`
	} `yaml:"readings"`
	Version     string `yaml:"version"`
	AppPresent  bool   `yaml:"app_present"`
	CompileDate string `yaml:"compile_date,omitempty"`
	CompileTime string `yaml:"compile_time,omitempty"`
	BootMarker  bool   `yaml:"boot_marker"`
}

// View returns r in display form.
func (r *Record) View() View {
	v := View{
		ID:             r.IDString(),
		PermitTransmit: r.PermitTransmit,
		CoefAnemo:      r.CoefAnemo,
		CoefPluvio:     r.CoefPluvio,
		TempA:          r.TempA,
		TempB:          r.TempB,
		Version:        r.VersionString(),
		AppPresent:     r.AppPresent(),
		CompileDate:    Text(r.CompileDate[:]),
		CompileTime:    Text(r.CompileTime[:]),
		BootMarker:     r.HasBootMarker(),
	}
	v.Readings.WindSpeed = r.WindSpeed
	v.Readings.Rain = r.Rain
	v.Readings.Temperature = r.Temperature
	return v
}

// YAML renders r as a YAML document.
func (r *Record) YAML() ([]byte, error) {
	return yaml.Marshal(r.View())
}
