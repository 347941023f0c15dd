package components

import "gonum.org/v1/gonum/spatial/r3"

// SonarMode selects passive listening or an active ping.
type SonarMode uint8

const (
	SonarPassive SonarMode = iota
	SonarActive
)

func (m SonarMode) String() string {
	if m == SonarActive {
		return "active"
	}
	return "passive"
}

// ContactClass is the identification level of a contact.
type ContactClass uint8

const (
	ContactUnidentified ContactClass = iota
	ContactIdentified
)

func (c ContactClass) String() string {
	if c == ContactIdentified {
		return "identified"
	}
	return "unidentified"
}

// Contact is one sensor detection.
type Contact struct {
	TargetID uint32
	Distance float64
	Bearing  float64 // degrees [0, 360) clockwise from north
	Strength float64 // [0, 10]
	Class    ContactClass
	Decoy    bool // set once cross-checked
	Spoofed  bool // ground truth that the source is a decoy; hidden until cross-checked
	Mine     bool
	Position r3.Vec
	Mode     SonarMode
	Revealed bool // supplied by a drone rather than own sonar

	FirstSeen float64 // sim seconds
	UpdatedAt float64 // sim seconds
}

// Sensor holds a vessel's sonar state and contact list.
type Sensor struct {
	Contacts []Contact // sorted by TargetID

	PassiveTimer float64
	LastPingAt   float64
	HasPinged    bool
	PingCadence  float64 // seconds between the operator's recent pings
	TowedArray   bool

	SelectedID   uint32
	HasSelection bool
}

// Find returns the contact for a target ID.
func (s *Sensor) Find(id uint32) (Contact, bool) {
	for _, c := range s.Contacts {
		if c.TargetID == id {
			return c, true
		}
	}
	return Contact{}, false
}
