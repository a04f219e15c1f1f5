package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTransferDefaults(t *testing.T) {
	require := require.New(t)

	tr := NewTransfer(7, "", "")
	require.Equal(UnknownTransferName, tr.Name)
	require.Equal(DefaultTransferHash, tr.Hash)

	tr = NewTransfer(7, "some.movie", "abcd")
	require.Equal("some.movie", tr.Name)
	require.Equal("abcd", tr.Hash)
	require.Equal("some.movie (id=7)", fmt.Sprintf("%s", tr))
}

func TestTransferLeftUntilDoneClampsOverflow(t *testing.T) {
	require := require.New(t)

	tr := TransferFixture()
	tr.Size = 100
	tr.Downloaded = 40
	require.Equal(int64(60), tr.LeftUntilDone())

	// Remote listings occasionally report downloaded > size.
	tr.Downloaded = 140
	require.Equal(int64(0), tr.LeftUntilDone())
	require.Equal(float64(1), tr.PercentDone())

	tr.Size = 0
	require.Equal(float64(0), tr.PercentDone())
}

func TestTransferTargets(t *testing.T) {
	require := require.New(t)

	tr := TransferFixture()
	require.Empty(tr.Targets())

	_, ok := tr.TopLevelTarget()
	require.False(ok)

	dir := DownloadTarget{To: "/dl/show", Kind: Directory, TopLevel: true}
	file := DownloadTarget{To: "/dl/show/e01.mkv", From: "http://dl/1", Kind: File}
	sub := DownloadTarget{To: "/dl/show/e01.srt", From: "http://dl/2", Kind: File}
	tr.SetTargets([]DownloadTarget{dir, file, sub})

	require.Equal([]DownloadTarget{dir, file, sub}, tr.Targets())
	require.Equal([]DownloadTarget{file, sub}, tr.FileTargets())

	top, ok := tr.TopLevelTarget()
	require.True(ok)
	require.Equal(dir, top)
}

func TestTransferTargetsCopied(t *testing.T) {
	require := require.New(t)

	tr := TransferFixture()
	targets := []DownloadTarget{{To: "/dl/x.mkv", Kind: File, TopLevel: true}}
	tr.SetTargets(targets)

	// Mutating the caller's slice must not affect the stored plan.
	targets[0].To = "/dl/y.mkv"
	require.Equal("/dl/x.mkv", tr.Targets()[0].To)

	// Mutating a returned copy must not affect the stored plan either.
	got := tr.Targets()
	got[0].To = "/dl/z.mkv"
	require.Equal("/dl/x.mkv", tr.Targets()[0].To)
}
