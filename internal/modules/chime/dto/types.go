package dto

type DoctorResult struct {
	Driver          string
	Name            string
	Version         string
	BinaryReachable bool
	ChecksumValid   bool
	LifecycleOK     bool
	Error           string
}
