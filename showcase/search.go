package main

import (
	"context"
	"strings"
	"time"

	"github.com/go-drift/drift/pkg/core"
	"github.com/go-drift/drift/pkg/widgets"
	"github.com/go-drift/tide/pkg/binding"
	"github.com/go-drift/tide/pkg/tide"
)

// SearchEvent is the event family handled by the search bloc.
type SearchEvent interface{ searchEvent() }

// QueryChanged carries the latest text field contents.
type QueryChanged struct{ Query string }

func (QueryChanged) searchEvent() {}

// SearchState is the live-search view model.
type SearchState struct {
	Query   string
	Results []string
	Loading bool
}

var cities = []string{
	"Amsterdam", "Auckland", "Bangkok", "Barcelona", "Berlin",
	"Bogotá", "Boston", "Buenos Aires", "Copenhagen", "Dublin",
	"Helsinki", "Lisbon", "London", "Melbourne", "Montreal",
	"Nairobi", "Oslo", "Prague", "Reykjavík", "Seoul",
	"Singapore", "Stockholm", "Tokyo", "Vienna", "Wellington",
}

// lookup simulates a remote query. It honors ctx so a superseded
// search stops before publishing stale results.
func lookup(ctx context.Context, query string) ([]string, error) {
	select {
	case <-time.After(150 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	var out []string
	for _, c := range cities {
		if strings.Contains(strings.ToLower(c), strings.ToLower(query)) {
			out = append(out, c)
		}
	}
	return out, nil
}

// NewSearchBloc builds the search bloc. Keystrokes are debounced for
// 300ms, and a newer query cancels any lookup still in flight.
func NewSearchBloc() *tide.Bloc[SearchState, SearchEvent] {
	b := tide.NewBloc[SearchState, SearchEvent](SearchState{})
	tide.On(b, func(ctx context.Context, ev QueryChanged, emit tide.Emitter[SearchState]) error {
		if ev.Query == "" {
			emit.Emit(SearchState{})
			return nil
		}
		emit.Emit(SearchState{Query: ev.Query, Loading: true})
		results, err := lookup(ctx, ev.Query)
		if err != nil {
			return nil
		}
		emit.Emit(SearchState{Query: ev.Query, Results: results})
		return nil
	}, tide.WithTransformer(tide.Debounce(300*time.Millisecond, tide.Restartable())))
	return b
}

// SearchScreen is a text field with a result list that updates as the
// user types.
type SearchScreen struct {
	core.StatefulBase
}

func (SearchScreen) CreateState() core.State { return &searchScreenState{} }

type searchScreenState struct {
	core.StateBase
	search *tide.Bloc[SearchState, SearchEvent]
}

func (s *searchScreenState) InitState() {
	s.search = NewSearchBloc()
	s.OnDispose(func() { _ = s.search.Close() })
}

func (s *searchScreenState) Build(ctx core.BuildContext) core.Widget {
	return widgets.Column{
		CrossAxisAlignment: widgets.CrossAxisAlignmentStretch,
		Children: []core.Widget{
			widgets.TextField{
				Placeholder: "Search cities",
				OnChanged: func(text string) {
					s.search.Add(QueryChanged{Query: text})
				},
			},
			widgets.SizedBox{Height: 8},
			binding.StoreBuilder[SearchState]{
				Source:  s.search,
				Builder: buildResults,
			},
		},
	}
}

func buildResults(ctx core.BuildContext, state SearchState) core.Widget {
	switch {
	case state.Loading:
		return widgets.Text{Content: "Searching…"}
	case state.Query == "":
		return widgets.Text{Content: "Type to search."}
	case len(state.Results) == 0:
		return widgets.Text{Content: "No matches."}
	}
	children := make([]core.Widget, 0, len(state.Results))
	for _, r := range state.Results {
		children = append(children, widgets.Text{Content: r})
	}
	return widgets.Column{
		CrossAxisAlignment: widgets.CrossAxisAlignmentStretch,
		Children:           children,
	}
}
