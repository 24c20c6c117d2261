package service

import (
	"context"
	"fmt"
	"os"

	"decktimer/internal/modules/chime/domain"
	"decktimer/internal/modules/chime/dto"
	chimeout "decktimer/internal/modules/chime/port/out"
)

const DriverPlugin = "plugin"

// Doctor diagnoses the configured chime device without playing it.
type Doctor struct {
	driver   string
	manifest domain.Manifest
	host     chimeout.PluginHost
	prober   chimeout.Prober
}

func NewDoctor(driver string, manifest domain.Manifest, host chimeout.PluginHost, prober chimeout.Prober) *Doctor {
	return &Doctor{driver: driver, manifest: manifest, host: host, prober: prober}
}

func (d *Doctor) Check(ctx context.Context) dto.DoctorResult {
	if d.driver != DriverPlugin {
		result := dto.DoctorResult{Driver: d.driver, Name: d.driver, BinaryReachable: true, ChecksumValid: true}
		if d.prober != nil {
			if err := d.prober.Probe(ctx); err != nil {
				result.Error = err.Error()
				return result
			}
		}
		result.LifecycleOK = true
		return result
	}

	m := d.manifest
	result := dto.DoctorResult{Driver: d.driver, Name: m.Name}
	if err := m.Validate(); err != nil {
		result.Error = err.Error()
		return result
	}
	if _, err := os.Stat(m.Binary); err != nil {
		result.Error = fmt.Sprintf("binary does not exist: %s", m.Binary)
		return result
	}
	result.BinaryReachable = true
	if err := m.VerifyChecksum(); err != nil {
		result.Error = err.Error()
		return result
	}
	result.ChecksumValid = true
	if d.host == nil {
		result.Error = "plugin host not configured"
		return result
	}
	meta, err := d.host.GetMetadata(ctx, m)
	if err != nil {
		result.Error = err.Error()
		return result
	}
	result.LifecycleOK = true
	result.Version = meta.Version
	return result
}
