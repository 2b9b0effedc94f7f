package bucket

import "testing"

func TestChunkedNamer(t *testing.T) {
	namer := ChunkedNamer{Basename: "chunk"}
	cases := []struct {
		i    int64
		want string
	}{
		{0, "chunk_0000_0000_0001.ply"},
		{1, "chunk_0001_0001_0001.ply"},
		{2, "chunk_0002_0004_0001.ply"},
		{3, "chunk_0003_0009_0001.ply"},
	}
	for _, c := range cases {
		id := ChunkId{Coords: [3]int64{c.i, c.i * c.i, 1}}
		if got := namer.Name(id); got != c.want {
			t.Errorf("Name(%v) = %q, want %q", id, got, c.want)
		}
	}
}

func TestChunkedNamerWidensRatherThanTruncates(t *testing.T) {
	namer := ChunkedNamer{Basename: "chunk"}
	id := ChunkId{Coords: [3]int64{12345, -7, 0}}
	got := namer.Name(id)
	want := "chunk_12345_-0007_0000.ply"
	if got != want {
		t.Errorf("Name(%v) = %q, want %q", id, got, want)
	}
}

func TestTrivialNamer(t *testing.T) {
	namer := TrivialNamer{Path: "out.ply"}
	if got := namer.Name(ChunkId{Coords: [3]int64{1, 2, 3}}); got != "out.ply" {
		t.Errorf("Name = %q, want out.ply", got)
	}
}
