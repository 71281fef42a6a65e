package dynamo

// Kinematics is the full physical state of the body at one instant.
// Position is height above ground; velocity is positive downward.
type Kinematics struct {
	Time             float64 `json:"time"`
	Position         float64 `json:"position"`
	Velocity         float64 `json:"velocity"`
	Acceleration     float64 `json:"acceleration"`
	NetForce         float64 `json:"net_force"`
	GravityForce     float64 `json:"gravity_force"`
	FrictionForce    float64 `json:"friction_force"`
	ArchimedesThrust float64 `json:"archimedes_thrust"`
	KineticEnergy    float64 `json:"kinetic_energy"`
	PotentialEnergy  float64 `json:"potential_energy"`
	TotalEnergy      float64 `json:"total_energy"`
}

// HistoryPoint is a recorded Kinematics value. It is copied on append and
// never modified afterwards.
type HistoryPoint Kinematics

func (k Kinematics) Point() HistoryPoint { return HistoryPoint(k) }

func (p HistoryPoint) Kinematics() Kinematics { return Kinematics(p) }

// Grounded reports whether the body has reached ground level.
func (k Kinematics) Grounded() bool { return k.Position <= 0 }

// CopyHistory returns a structural copy that shares no storage with src.
func CopyHistory(src []HistoryPoint) []HistoryPoint {
	if src == nil {
		return nil
	}
	dst := make([]HistoryPoint, len(src))
	copy(dst, src)
	return dst
}
