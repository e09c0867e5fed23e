package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/okian/cinemind/internal/adapters/recommender"
	"github.com/okian/cinemind/internal/domain/catalog"
	"github.com/okian/cinemind/internal/domain/movie"
	. "github.com/smartystreets/goconvey/convey"
)

type fakeSource struct {
	titles    []string
	recs      []string
	err       error
	seeds     []string
	listCalls int
}

func (f *fakeSource) AllTitles(context.Context) ([]string, error) {
	f.listCalls++
	if f.err != nil {
		return nil, f.err
	}
	return f.titles, nil
}

func (f *fakeSource) Recommendations(_ context.Context, seed string) ([]string, error) {
	f.seeds = append(f.seeds, seed)
	if f.err != nil {
		return nil, f.err
	}
	return f.recs, nil
}

func titles(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("Movie %d", i)
	}
	return out
}

func TestAdapterLoad(t *testing.T) {
	Convey("Given a catalog adapter", t, func() {
		ctx := context.Background()

		Convey("When the service lists titles", func() {
			src := &fakeSource{titles: []string{"Inception", "Interstellar", "Amelie"}}
			records := catalog.NewAdapter(src, catalog.WithPosterBase("http://img")).Load(ctx, movie.Home)

			Convey("Then records are numbered by position under the namespace", func() {
				So(records, ShouldHaveLength, 3)
				for i, r := range records {
					So(r.ID, ShouldEqual, i+1)
				}
				So(records[0].Title, ShouldEqual, "Inception")
				So(records[2].PosterURL, ShouldEqual, "http://img?random=1002")
			})
		})

		Convey("When the service fails to fetch or parse", func() {
			for _, err := range []error{
				&recommender.FetchError{Endpoint: recommender.EndpointAll, StatusCode: 500, Err: errors.New("boom")},
				&recommender.ParseError{Endpoint: recommender.EndpointAll, Err: errors.New("not a list")},
			} {
				records := catalog.NewAdapter(&fakeSource{err: err}).Load(ctx, movie.Onboarding)

				So(records, ShouldNotBeNil)
				So(records, ShouldBeEmpty)
			}
		})
	})
}

func TestAggregatorRecommend(t *testing.T) {
	Convey("Given a recommendation aggregator", t, func() {
		ctx := context.Background()
		favorites := movie.Normalize([]string{"Amélie & Co", "Inception"}, movie.Onboarding, "")

		Convey("When there are no favorites", func() {
			src := &fakeSource{recs: titles(3)}
			recs := catalog.NewAggregator(src).Recommend(ctx, nil)

			Convey("Then no call is made and the list is empty", func() {
				So(src.seeds, ShouldBeEmpty)
				So(recs, ShouldNotBeNil)
				So(recs, ShouldBeEmpty)
			})
		})

		Convey("When the service returns many titles", func() {
			src := &fakeSource{recs: titles(80)}
			recs := catalog.NewAggregator(src).Recommend(ctx, favorites)

			Convey("Then the first favorite seeds a single call", func() {
				So(src.seeds, ShouldResemble, []string{"Amélie & Co"})
			})

			Convey("Then the list is truncated to fifty in the recommendation namespace", func() {
				So(recs, ShouldHaveLength, catalog.MaxRecommendations)
				So(recs[0].ID, ShouldEqual, 20001)
				So(recs[49].ID, ShouldEqual, 20050)
				So(recs[49].Title, ShouldEqual, "Movie 49")
				So(recs[0].Year, ShouldEqual, 2021)
				So(recs[0].Genres, ShouldResemble, []string{"Drama", "Action"})
				So(recs[0].Rating, ShouldEqual, 8.2)
				So(recs[0].PosterURL, ShouldEqual, movie.DefaultPosterBaseURL+"?random=20000")
			})
		})

		Convey("When the call fails", func() {
			src := &fakeSource{err: &recommender.FetchError{Endpoint: recommender.EndpointRecommend, Err: errors.New("down")}}
			recs := catalog.NewAggregator(src).Recommend(ctx, favorites)

			Convey("Then the result is empty and nothing propagates", func() {
				So(recs, ShouldNotBeNil)
				So(recs, ShouldBeEmpty)
				So(src.seeds, ShouldHaveLength, 1)
			})
		})

		Convey("When the service has nothing to recommend", func() {
			recs := catalog.NewAggregator(&fakeSource{recs: []string{}}).Recommend(ctx, favorites)

			So(recs, ShouldBeEmpty)
		})
	})
}
