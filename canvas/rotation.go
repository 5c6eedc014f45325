package canvas

// Rotation is the orientation of a device relative to the layout it sits
// in. The four values form a group under composition: None and UpsideDown
// are their own inverses, Left and Right invert each other.
type Rotation int

const (
	RotationNone Rotation = iota
	RotationUpsideDown
	RotationLeft
	RotationRight
)

func (r Rotation) String() string {
	switch r {
	case RotationNone:
		return "none"
	case RotationUpsideDown:
		return "upsidedown"
	case RotationLeft:
		return "left"
	case RotationRight:
		return "right"
	}
	return "unknown"
}

// Inverse returns the rotation that undoes r.
func (r Rotation) Inverse() Rotation {
	switch r {
	case RotationLeft:
		return RotationRight
	case RotationRight:
		return RotationLeft
	default:
		return r
	}
}

// Translate rotates the point (x,y) around the origin. Intermediate
// values may be negative; callers add the device offset before the result
// is used as a canvas coordinate.
func (r Rotation) Translate(x, y int) (int, int) {
	switch r {
	case RotationUpsideDown:
		return -x, -y
	case RotationLeft:
		return -y, x
	case RotationRight:
		return y, -x
	default:
		return x, y
	}
}

// toGlobal maps a device-local point into layout coordinates: rotate,
// then offset.
func toGlobal(x, y int, rot Rotation, xOffset, yOffset int) (int, int) {
	x, y = rot.Translate(x, y)
	return x + xOffset, y + yOffset
}

// toLocal is the exact inverse of toGlobal for every rotation and offset.
func toLocal(x, y int, rot Rotation, xOffset, yOffset int) (int, int) {
	return rot.Inverse().Translate(x-xOffset, y-yOffset)
}
