package media_test

import (
	"mediakit/internal/media"
	"mediakit/internal/registry"
	"mediakit/internal/store"
	"mediakit/internal/testutil"
)

const docRoot = "/data/app/documents"

// fixedMillis is testutil.FixedClock() in unix milliseconds.
const fixedMillis int64 = 1705314600000

// rig bundles the fakes a pipeline test drives.
type rig struct {
	fs       *testutil.MemFilesystem
	clock    *testutil.StubClock
	ids      *testutil.StubIDGenerator
	perms    *testutil.StaticPermissions
	audio    *testutil.FakeAudioSession
	player   *testutil.FakePlayer
	store    *store.MemoryStore
	lib      *testutil.FakeLibrary
	registry *registry.MemoryRegistry
	sealer   media.Sealer
}

func newRig() *rig {
	clock := testutil.FixedClock()
	return &rig{
		fs:       testutil.NewMemFilesystem(),
		clock:    clock,
		ids:      testutil.NewStubIDGenerator(),
		perms:    testutil.GrantAll(),
		audio:    &testutil.FakeAudioSession{},
		player:   &testutil.FakePlayer{},
		store:    store.NewMemoryStore("remote"),
		lib:      testutil.NewFakeLibrary(media.LibraryCapabilities{}),
		registry: registry.NewMemoryRegistry(clock),
	}
}

func (r *rig) layout() *media.Layout {
	return media.NewLayout(docRoot, r.fs, r.clock)
}

func (r *rig) builder() *media.Builder {
	return media.NewBuilder(r.fs, r.clock, r.ids)
}

func (r *rig) recorder() *media.Recorder {
	return media.NewRecorder(r.perms, r.audio, r.layout(), r.builder(), r.fs, media.NewNopLogger(), r.clock)
}

func (r *rig) transfer(remote media.RemoteStore) *media.TransferService {
	return media.NewTransferService(remote, r.sealer, r.layout(), r.builder(), r.fs, media.NewNopLogger(), r.clock)
}

func (r *rig) pipeline() *media.Pipeline {
	return media.NewPipeline(media.Deps{
		DocumentRoot: docRoot,
		Filesystem:   r.fs,
		Permissions:  r.perms,
		Audio:        r.audio,
		Player:       r.player,
		Store:        r.store,
		Sealer:       r.sealer,
		Library:      r.lib,
		Registry:     r.registry,
		Clock:        r.clock,
		IDs:          r.ids,
	})
}

// nativeRecording arranges for the next recording to produce a file of size
// bytes at uri.
func (r *rig) nativeRecording(uri string, size int, durationMillis int64) {
	r.fs.AddFile(uri, make([]byte, size))
	r.audio.NextURI = uri
	r.audio.NextDuration = durationMillis
}
