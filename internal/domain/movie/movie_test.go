package movie_test

import (
	"testing"

	"github.com/okian/cinemind/internal/domain/movie"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNormalize(t *testing.T) {
	Convey("Given a list of titles", t, func() {
		titles := []string{"Inception", "Interstellar", "Amelie"}

		Convey("When normalizing with offset 0", func() {
			records := movie.Normalize(titles, movie.Onboarding, "")

			Convey("Then ids are offset + position + 1", func() {
				So(records, ShouldHaveLength, 3)
				for i, r := range records {
					So(r.ID, ShouldEqual, i+1)
					So(r.Title, ShouldEqual, titles[i])
				}
			})

			Convey("And placeholder metadata is stamped", func() {
				So(records[0].Year, ShouldEqual, 2020)
				So(records[0].Genres, ShouldResemble, []string{"Drama"})
				So(records[0].Rating, ShouldEqual, 8.0)
			})

			Convey("And posters are deterministic per position", func() {
				So(records[0].PosterURL, ShouldEqual, "https://picsum.photos/300/450?random=0")
				So(records[2].PosterURL, ShouldEqual, "https://picsum.photos/300/450?random=2")
			})
		})

		Convey("When normalizing in the recommendation namespace", func() {
			records := movie.Normalize(titles, movie.Recommendations, "http://img.local/p")

			Convey("Then ids and posters live in the 20000 range", func() {
				So(records[0].ID, ShouldEqual, 20001)
				So(records[2].ID, ShouldEqual, 20003)
				So(records[1].PosterURL, ShouldEqual, "http://img.local/p?random=20001")
				So(records[0].Genres, ShouldResemble, []string{"Drama", "Action"})
			})
		})

		Convey("When the poster base already has a query", func() {
			records := movie.Normalize(titles[:1], movie.Home, "http://img.local/p?grayscale")

			Convey("Then the seed is appended as another parameter", func() {
				So(records[0].PosterURL, ShouldEqual, "http://img.local/p?grayscale&random=1000")
			})
		})

		Convey("When mutating one record's genres", func() {
			records := movie.Normalize(titles, movie.Onboarding, "")
			records[0].Genres[0] = "Horror"

			Convey("Then other records and the namespace are untouched", func() {
				So(records[1].Genres[0], ShouldEqual, "Drama")
				So(movie.Onboarding.Genres[0], ShouldEqual, "Drama")
			})
		})
	})

	Convey("Given no titles", t, func() {
		records := movie.Normalize(nil, movie.Onboarding, "")

		Convey("Then the result is empty but not nil", func() {
			So(records, ShouldNotBeNil)
			So(records, ShouldBeEmpty)
		})
	})
}

func TestNormalizeIDsAreUnique(t *testing.T) {
	Convey("Given many titles and several offsets", t, func() {
		titles := make([]string, 500)
		for i := range titles {
			titles[i] = "Same Title"
		}

		for _, offset := range []int{0, 7, 1000, 20000} {
			ns := movie.Namespace{IDOffset: offset}
			records := movie.Normalize(titles, ns, "")
			seen := make(map[int]bool, len(records))
			for i, r := range records {
				So(r.ID, ShouldEqual, offset+i+1)
				So(seen[r.ID], ShouldBeFalse)
				seen[r.ID] = true
			}
		}
	})
}

func TestNamespaceContains(t *testing.T) {
	Convey("Given the recommendation namespace with 50 titles", t, func() {
		ns := movie.Recommendations

		So(ns.Contains(20001, 50), ShouldBeTrue)
		So(ns.Contains(20050, 50), ShouldBeTrue)
		So(ns.Contains(20051, 50), ShouldBeFalse)
		So(ns.Contains(20000, 50), ShouldBeFalse)
		So(ns.Contains(1, 50), ShouldBeFalse)
	})
}

func TestFind(t *testing.T) {
	Convey("Given normalized records", t, func() {
		records := movie.Normalize([]string{"A", "B"}, movie.Onboarding, "")

		r, ok := movie.Find(records, 2)
		So(ok, ShouldBeTrue)
		So(r.Title, ShouldEqual, "B")

		_, ok = movie.Find(records, 3)
		So(ok, ShouldBeFalse)
	})
}
