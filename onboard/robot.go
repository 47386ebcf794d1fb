package onboard

import (
	"fmt"
	"math"
	"sync"

	"github.com/Prisol7/Module3-leg/onboard/errors"
)

const (
	START_LEG_ANGLE = 45.0

	// movement limits enforced before anything reaches the bus
	LEG_RANGE     = 60.0
	JOINT_REL_MIN = 0.0
	JOINT_REL_MAX = 60.0
)

type Side string

const (
	SideLeft  Side = "left"
	SideRight Side = "right"
)

// ParseSide validates a side name coming in from a client before it can
// reach the actuator model.
func ParseSide(name string) (side Side, err error) {
	switch Side(name) {
	case SideLeft, SideRight:
		return Side(name), nil
	default:
		return "", errors.SideNameError{Side: name}
	}
}

// Leg holds an absolute angle, bounded to Initial ± LEG_RANGE for the
// lifetime of the process.
type Leg struct {
	Label   string
	Angle   float64
	Initial float64
}

// Joint holds a relative offset from its paired leg. Its absolute drive
// angle is always derived from the leg, never stored as ground truth.
type Joint struct {
	Label    string
	Relative float64
}

// legJointPair couples a leg with the joint mounted on it. The pairing is
// fixed at construction; left pairs with left, right with right.
type legJointPair struct {
	leg   Leg
	joint Joint
}

// jointAbsolute derives the joint's drive angle from the current leg angle.
func (p *legJointPair) jointAbsolute() float64 {
	return p.leg.Angle + p.joint.Relative
}

type RobotInterface interface {
	SetLeg(side Side, angle float64) (msg string, err error)
	SetJoint(side Side, relative float64) (msg string, err error)
	GetState() (state RobotState)
	SendString() string
}

// Robot owns the four actuators. All mutation and derivation happens under
// one lock; joint derivation reads leg state, so cross-actuator consistency
// needs a single mutation path at a time.
type Robot struct {
	lock  sync.Mutex
	sides map[Side]*legJointPair
}

func NewRobot(config RobotConfig) (r *Robot, err error) {
	switch config.Version {
	case 1:
		start := config.Robot.StartAngle
		if start == 0 {
			start = START_LEG_ANGLE
		}

		r = &Robot{
			sides: map[Side]*legJointPair{
				SideLeft: {
					leg:   Leg{Label: "Left Leg", Angle: start, Initial: start},
					joint: Joint{Label: "Left Joint"},
				},
				SideRight: {
					leg:   Leg{Label: "Right Leg", Angle: start, Initial: start},
					joint: Joint{Label: "Right Joint"},
				},
			},
		}

	default:
		err = fmt.Errorf("unable to work with version %d", config.Version)
	}

	return
}

// normalizeDiff maps an angular difference onto [-180, 180) so a requested
// angle compares against the shortest path from the initial angle, with
// wrap-around at ±180°.
func normalizeDiff(deg float64) float64 {
	d := math.Mod(deg+180, 360)
	if d < 0 {
		d += 360
	}
	return d - 180
}

// SetLeg commits an absolute leg angle if it lies within Initial ± LEG_RANGE
// along the shortest path. On rejection the model is left untouched and the
// error names the allowed band.
func (r *Robot) SetLeg(side Side, angle float64) (msg string, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	p, ok := r.sides[side]
	if !ok {
		return "", errors.SideNameError{Side: string(side)}
	}

	diff := normalizeDiff(angle - p.leg.Initial)
	if diff < -LEG_RANGE || diff > LEG_RANGE {
		return "", errors.AngleRangeError{
			Label: p.leg.Label,
			Min:   p.leg.Initial - LEG_RANGE,
			Max:   p.leg.Initial + LEG_RANGE,
		}
	}

	p.leg.Angle = angle
	return fmt.Sprintf("%s set to %.1f", p.leg.Label, p.leg.Angle), nil
}

// SetJoint commits a joint offset in [JOINT_REL_MIN, JOINT_REL_MAX]. The
// input is always relative to the paired leg, never an absolute angle.
func (r *Robot) SetJoint(side Side, relative float64) (msg string, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	p, ok := r.sides[side]
	if !ok {
		return "", errors.SideNameError{Side: string(side)}
	}

	if relative < JOINT_REL_MIN || relative > JOINT_REL_MAX {
		return "", errors.AngleRangeError{
			Label: p.joint.Label,
			Min:   JOINT_REL_MIN,
			Max:   JOINT_REL_MAX,
		}
	}

	p.joint.Relative = relative
	return fmt.Sprintf("%s relative angle set to %.1f", p.joint.Label, p.joint.Relative), nil
}

// JointAbsolute exposes the derived drive angle for a joint, mainly for
// diagnostics; clients observe the relative offset via GetState.
func (r *Robot) JointAbsolute(side Side) (angle float64, err error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	p, ok := r.sides[side]
	if !ok {
		return 0, errors.SideNameError{Side: string(side)}
	}

	return p.jointAbsolute(), nil
}

type LegState struct {
	Angle   float64 `json:"angle"`
	Initial float64 `json:"initial"`
}

type JointState struct {
	Angle float64 `json:"angle"`
}

// RobotState is the exact shape clients observe: legs report their absolute
// angle plus the initial angle, joints report their relative offset.
type RobotState struct {
	LeftLeg    LegState   `json:"left_leg"`
	LeftJoint  JointState `json:"left_joint"`
	RightLeg   LegState   `json:"right_leg"`
	RightJoint JointState `json:"right_joint"`
}

func (r *Robot) GetState() (state RobotState) {
	r.lock.Lock()
	defer r.lock.Unlock()

	l := r.sides[SideLeft]
	rt := r.sides[SideRight]

	state.LeftLeg = LegState{Angle: l.leg.Angle, Initial: l.leg.Initial}
	state.LeftJoint = JointState{Angle: l.joint.Relative}
	state.RightLeg = LegState{Angle: rt.leg.Angle, Initial: rt.leg.Initial}
	state.RightJoint = JointState{Angle: rt.joint.Relative}
	return
}

// SendString renders the wire payload for the leg controller:
// "{left_joint:3}/{left_leg:3}/{right_joint:3}/{right_leg:3}".
// Joints go out as their relative offset, legs as their absolute angle.
// Each field is rounded half away from zero (math.Round) and right-aligned
// to width 3. No trailing terminator.
func (r *Robot) SendString() string {
	r.lock.Lock()
	defer r.lock.Unlock()

	l := r.sides[SideLeft]
	rt := r.sides[SideRight]

	return fmt.Sprintf("%3d/%3d/%3d/%3d",
		int(math.Round(l.joint.Relative)),
		int(math.Round(l.leg.Angle)),
		int(math.Round(rt.joint.Relative)),
		int(math.Round(rt.leg.Angle)))
}
