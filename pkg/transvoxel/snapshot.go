package transvoxel

import (
	"fmt"

	"github.com/tinylib/msgp/msgp"
)

// MeshSnapshot is a msgp-serializable capture of a MeshOutput, used by the
// determinism test: two snapshots of the same MeshOutput must marshal to
// byte-identical bytes.
type MeshSnapshot struct {
	Vertices []Vec3
	Normals  []Vec3
	Extra    [][4]float32
	Indices  []uint32
}

// Snapshot captures a MeshOutput's contents as a MeshSnapshot.
func Snapshot(m *MeshOutput) MeshSnapshot {
	if m == nil {
		return MeshSnapshot{}
	}
	return MeshSnapshot{
		Vertices: append([]Vec3(nil), m.Vertices...),
		Normals:  append([]Vec3(nil), m.Normals...),
		Extra:    append([][4]float32(nil), m.Extra...),
		Indices:  append([]uint32(nil), m.Indices...),
	}
}

// MarshalMsg implements msgp.Marshaler by hand, following the same
// array-of-fields layout msgp's own code generator produces for a struct
// with no optional fields.
func (s *MeshSnapshot) MarshalMsg(b []byte) ([]byte, error) {
	b = msgp.AppendArrayHeader(b, 4)

	b = msgp.AppendArrayHeader(b, uint32(len(s.Vertices)))
	for _, v := range s.Vertices {
		b = appendVec3(b, v)
	}

	b = msgp.AppendArrayHeader(b, uint32(len(s.Normals)))
	for _, v := range s.Normals {
		b = appendVec3(b, v)
	}

	b = msgp.AppendArrayHeader(b, uint32(len(s.Extra)))
	for _, e := range s.Extra {
		b = msgp.AppendArrayHeader(b, 4)
		for _, f := range e {
			b = msgp.AppendFloat32(b, f)
		}
	}

	b = msgp.AppendArrayHeader(b, uint32(len(s.Indices)))
	for _, idx := range s.Indices {
		b = msgp.AppendUint32(b, idx)
	}

	return b, nil
}

// UnmarshalMsg implements msgp.Unmarshaler, the inverse of MarshalMsg.
func (s *MeshSnapshot) UnmarshalMsg(bts []byte) ([]byte, error) {
	fieldCount, bts, err := msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return bts, fmt.Errorf("transvoxel: MeshSnapshot: top-level array header: %w", err)
	}
	if fieldCount != 4 {
		return bts, fmt.Errorf("transvoxel: MeshSnapshot: expected 4 fields, got %d", fieldCount)
	}

	n, bts, err := msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return bts, fmt.Errorf("transvoxel: MeshSnapshot: Vertices header: %w", err)
	}
	s.Vertices = make([]Vec3, n)
	for i := range s.Vertices {
		s.Vertices[i], bts, err = readVec3(bts)
		if err != nil {
			return bts, fmt.Errorf("transvoxel: MeshSnapshot: Vertices[%d]: %w", i, err)
		}
	}

	n, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return bts, fmt.Errorf("transvoxel: MeshSnapshot: Normals header: %w", err)
	}
	s.Normals = make([]Vec3, n)
	for i := range s.Normals {
		s.Normals[i], bts, err = readVec3(bts)
		if err != nil {
			return bts, fmt.Errorf("transvoxel: MeshSnapshot: Normals[%d]: %w", i, err)
		}
	}

	n, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return bts, fmt.Errorf("transvoxel: MeshSnapshot: Extra header: %w", err)
	}
	s.Extra = make([][4]float32, n)
	for i := range s.Extra {
		var inner uint32
		inner, bts, err = msgp.ReadArrayHeaderBytes(bts)
		if err != nil {
			return bts, fmt.Errorf("transvoxel: MeshSnapshot: Extra[%d] header: %w", i, err)
		}
		if inner != 4 {
			return bts, fmt.Errorf("transvoxel: MeshSnapshot: Extra[%d] expected 4 floats, got %d", i, inner)
		}
		for j := 0; j < 4; j++ {
			s.Extra[i][j], bts, err = msgp.ReadFloat32Bytes(bts)
			if err != nil {
				return bts, fmt.Errorf("transvoxel: MeshSnapshot: Extra[%d][%d]: %w", i, j, err)
			}
		}
	}

	n, bts, err = msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return bts, fmt.Errorf("transvoxel: MeshSnapshot: Indices header: %w", err)
	}
	s.Indices = make([]uint32, n)
	for i := range s.Indices {
		s.Indices[i], bts, err = msgp.ReadUint32Bytes(bts)
		if err != nil {
			return bts, fmt.Errorf("transvoxel: MeshSnapshot: Indices[%d]: %w", i, err)
		}
	}

	return bts, nil
}

func appendVec3(b []byte, v Vec3) []byte {
	b = msgp.AppendArrayHeader(b, 3)
	b = msgp.AppendFloat64(b, v.X)
	b = msgp.AppendFloat64(b, v.Y)
	b = msgp.AppendFloat64(b, v.Z)
	return b
}

func readVec3(bts []byte) (Vec3, []byte, error) {
	n, bts, err := msgp.ReadArrayHeaderBytes(bts)
	if err != nil {
		return Vec3{}, bts, err
	}
	if n != 3 {
		return Vec3{}, bts, fmt.Errorf("expected 3-component vector, got %d components", n)
	}
	var v Vec3
	v.X, bts, err = msgp.ReadFloat64Bytes(bts)
	if err != nil {
		return v, bts, err
	}
	v.Y, bts, err = msgp.ReadFloat64Bytes(bts)
	if err != nil {
		return v, bts, err
	}
	v.Z, bts, err = msgp.ReadFloat64Bytes(bts)
	if err != nil {
		return v, bts, err
	}
	return v, bts, nil
}
