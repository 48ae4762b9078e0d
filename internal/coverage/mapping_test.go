package coverage

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func encodeULEB128(v uint64) []byte {
	var out []byte

	for {
		b := byte(v & 0x7f)
		v >>= 7

		if v != 0 {
			b |= 0x80
		}

		out = append(out, b)

		if v == 0 {
			break
		}
	}

	return out
}

func encodeString(s string) []byte {
	return append(encodeULEB128(uint64(len(s))), []byte(s)...)
}

func TestDecodeULEB128_RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 300, 1 << 20, 1 << 40}

	for _, v := range values {
		b := encodeULEB128(v)
		pos := 0

		got, err := decodeULEB128(b, &pos)
		if err != nil {
			t.Fatalf("decodeULEB128(%d): %v", v, err)
		}

		if got != v {
			t.Fatalf("decodeULEB128: got %d, want %d", got, v)
		}

		if pos != len(b) {
			t.Fatalf("decodeULEB128: consumed %d bytes, want %d", pos, len(b))
		}
	}
}

func TestDecodeULEB128_Truncated(t *testing.T) {
	pos := 0
	if _, err := decodeULEB128([]byte{0x80}, &pos); err == nil {
		t.Fatalf("expected error decoding truncated uleb128")
	}
}

func TestReadPrfNames(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(encodeString("main.fuzzTarget"))
	buf.Write(encodeString("main.helper"))

	names, err := readPrfNames(buf.Bytes())
	if err != nil {
		t.Fatalf("readPrfNames: %v", err)
	}

	if len(names) != 2 || names[0] != "main.fuzzTarget" || names[1] != "main.helper" {
		t.Fatalf("readPrfNames: got %v", names)
	}
}

func TestReadCovMap(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(encodeULEB128(2))
	buf.Write(encodeString("a.go"))
	buf.Write(encodeString("b.go"))

	files, err := readCovMap(buf.Bytes())
	if err != nil {
		t.Fatalf("readCovMap: %v", err)
	}

	if len(files) != 2 || files[0] != "a.go" || files[1] != "b.go" {
		t.Fatalf("readCovMap: got %v", files)
	}
}

func TestReadCovFun_ResolvesNameAndFile(t *testing.T) {
	key := nameMD5Key("main.fuzzTarget")

	var buf bytes.Buffer

	var keyBytes [8]byte
	binary.LittleEndian.PutUint64(keyBytes[:], uint64(key))
	buf.Write(keyBytes[:])

	buf.Write(encodeULEB128(0)) // file index
	buf.Write(encodeULEB128(3)) // 3 single counters
	buf.Write(encodeULEB128(1)) // 1 expression

	buf.Write(encodeULEB128(2)) // expression has 2 terms
	buf.Write(encodeULEB128(0))
	buf.Write(encodeULEB128(1))

	names := map[int64]string{key: "main.fuzzTarget"}
	files := []string{"a.go"}

	records, err := readCovFun(buf.Bytes(), names, files)
	if err != nil {
		t.Fatalf("readCovFun: %v", err)
	}

	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	rec := records[0]
	if rec.name != "main.fuzzTarget" || rec.file != "a.go" || rec.numSingle != 3 {
		t.Fatalf("unexpected record: %+v", rec)
	}

	if len(rec.expressions) != 1 || len(rec.expressions[0].terms) != 2 {
		t.Fatalf("unexpected expressions: %+v", rec.expressions)
	}

	got := rec.expressions[0].compute([]uint64{5, 7, 9})
	if got != 12 {
		t.Fatalf("expression.compute: got %d, want 12", got)
	}
}

func TestBuildNameMap(t *testing.T) {
	m := buildNameMap([]string{"foo", "bar"})
	if len(m) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(m))
	}

	if m[nameMD5Key("foo")] != "foo" {
		t.Fatalf("buildNameMap did not index by MD5 key correctly")
	}
}
