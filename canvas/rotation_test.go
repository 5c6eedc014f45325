package canvas

import "testing"

var allRotations = []Rotation{RotationNone, RotationUpsideDown, RotationLeft, RotationRight}

func TestTranslateKnownValues(t *testing.T) {
	cases := []struct {
		rot          Rotation
		x, y         int
		wantX, wantY int
	}{
		{RotationNone, 3, 5, 3, 5},
		{RotationUpsideDown, 3, 5, -3, -5},
		{RotationLeft, 3, 5, -5, 3},
		{RotationRight, 3, 5, 5, -3},
		{RotationLeft, 1, 0, 0, 1},
	}
	for _, c := range cases {
		gx, gy := c.rot.Translate(c.x, c.y)
		if gx != c.wantX || gy != c.wantY {
			t.Errorf("%s.Translate(%d,%d) = (%d,%d), want (%d,%d)",
				c.rot, c.x, c.y, gx, gy, c.wantX, c.wantY)
		}
	}
}

func TestInversePairs(t *testing.T) {
	if RotationLeft.Inverse() != RotationRight || RotationRight.Inverse() != RotationLeft {
		t.Fatal("left and right must invert each other")
	}
	if RotationNone.Inverse() != RotationNone || RotationUpsideDown.Inverse() != RotationUpsideDown {
		t.Fatal("none and upsidedown must be self-inverse")
	}
}

func TestTranslateRoundTrip(t *testing.T) {
	for _, rot := range allRotations {
		for x := -9; x <= 9; x += 3 {
			for y := -9; y <= 9; y += 3 {
				tx, ty := rot.Translate(x, y)
				bx, by := rot.Inverse().Translate(tx, ty)
				if bx != x || by != y {
					t.Fatalf("%s: (%d,%d) round-tripped to (%d,%d)", rot, x, y, bx, by)
				}
			}
		}
	}
}

func TestGlobalLocalRoundTrip(t *testing.T) {
	offsets := []struct{ ox, oy int }{{0, 0}, {9, 0}, {0, 17}, {13, 41}}
	for _, rot := range allRotations {
		for _, off := range offsets {
			for x := 0; x < 8; x++ {
				for y := 0; y < 8; y++ {
					gx, gy := toGlobal(x, y, rot, off.ox, off.oy)
					lx, ly := toLocal(gx, gy, rot, off.ox, off.oy)
					if lx != x || ly != y {
						t.Fatalf("%s offset (%d,%d): local (%d,%d) -> global (%d,%d) -> local (%d,%d)",
							rot, off.ox, off.oy, x, y, gx, gy, lx, ly)
					}
				}
			}
		}
	}
}

func TestLeft90Scenario(t *testing.T) {
	// An 8x8 device at offset (0,0) rotated left: local (1,0) lands at
	// global (0,1).
	gx, gy := toGlobal(1, 0, RotationLeft, 0, 0)
	if gx != 0 || gy != 1 {
		t.Fatalf("got (%d,%d), want (0,1)", gx, gy)
	}
}
