package library_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/compare/internal/domain/library"
	. "github.com/smartystreets/goconvey/convey"
)

func touch(dir string, names ...string) {
	for _, name := range names {
		So(os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o600), ShouldBeNil)
	}
}

func TestScan(t *testing.T) {
	ctx := context.Background()

	Convey("Given a music folder", t, func() {
		dir := t.TempDir()

		Convey("When it holds audio files in unsorted creation order", func() {
			touch(dir, "c.mp3", "a.flac", "b.song.ogg")

			songs, err := library.Scan(ctx, dir)

			Convey("Then songs are numbered by sorted name", func() {
				So(err, ShouldBeNil)
				So(len(songs), ShouldEqual, 3)
				So(songs[0].ID, ShouldEqual, 0)
				So(songs[0].Title, ShouldEqual, "a")
				So(songs[0].Extension, ShouldEqual, ".flac")
				So(songs[0].Path, ShouldEqual, filepath.Join(dir, "a.flac"))
				So(songs[1].Title, ShouldEqual, "b.song")
				So(songs[1].Extension, ShouldEqual, ".ogg")
				So(songs[2].ID, ShouldEqual, 2)
				So(songs[2].Title, ShouldEqual, "c")
			})
		})

		Convey("When it holds hidden files and sub-directories", func() {
			touch(dir, ".DS_Store", "track.wav")
			So(os.Mkdir(filepath.Join(dir, "covers"), 0o700), ShouldBeNil)

			songs, err := library.Scan(ctx, dir)

			Convey("Then they are skipped", func() {
				So(err, ShouldBeNil)
				So(len(songs), ShouldEqual, 1)
				So(songs[0].Title, ShouldEqual, "track")
				So(songs[0].ID, ShouldEqual, 0)
			})
		})

		Convey("When a file has no extension", func() {
			touch(dir, "a.mp3", "README")

			_, err := library.Scan(ctx, dir)

			Convey("Then the scan fails", func() {
				So(errors.Is(err, library.ErrMissingExtension), ShouldBeTrue)
			})
		})

		Convey("When it is empty", func() {
			songs, err := library.Scan(ctx, dir)

			Convey("Then no songs are returned", func() {
				So(err, ShouldBeNil)
				So(songs, ShouldBeEmpty)
			})
		})

		Convey("When the path is a file", func() {
			touch(dir, "a.mp3")

			_, err := library.Scan(ctx, filepath.Join(dir, "a.mp3"))

			Convey("Then it is rejected", func() {
				So(errors.Is(err, library.ErrNotDirectory), ShouldBeTrue)
			})
		})

		Convey("When the path does not exist", func() {
			_, err := library.Scan(ctx, filepath.Join(dir, "missing"))

			Convey("Then it is rejected", func() {
				So(errors.Is(err, library.ErrNotDirectory), ShouldBeTrue)
			})
		})

		Convey("When the context is cancelled", func() {
			touch(dir, "a.mp3")
			cctx, cancel := context.WithCancel(ctx)
			cancel()

			_, err := library.Scan(cctx, dir)

			Convey("Then the scan stops", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
