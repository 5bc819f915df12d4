package choice

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-formwidgets/pkg/model"
	"github.com/goliatone/go-formwidgets/pkg/option"
)

type recordingObserver struct {
	mu        sync.Mutex
	started   int
	applied   int
	discarded int
	failed    int
}

func (o *recordingObserver) FetchStarted(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started++
}

func (o *recordingObserver) FetchApplied(string, int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.applied++
}

func (o *recordingObserver) FetchDiscarded(string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.discarded++
}

func (o *recordingObserver) FetchFailed(string, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failed++
}

func (o *recordingObserver) snapshot() (started, applied, discarded, failed int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.started, o.applied, o.discarded, o.failed
}

func remoteProps() model.WidgetProps {
	return model.WidgetProps{
		ID:    "root_city",
		Label: "City",
		Options: model.UIOptions{
			AutocompleteType: "cities",
		},
	}
}

func TestAutocompleteDiscardsStaleCompletion(t *testing.T) {
	release := map[string]chan struct{}{
		"a":  make(chan struct{}),
		"ab": make(chan struct{}),
	}
	results := map[string][]option.Option{
		"a":  {{Label: "Amsterdam", Value: "ams"}},
		"ab": {{Label: "Abu Dhabi", Value: "auh"}},
	}
	started := make(chan string, 2)
	fetcher := FetcherFunc(func(_ context.Context, _ string, query string) ([]option.Option, error) {
		started <- query
		<-release[query]
		return results[query], nil
	})

	observer := &recordingObserver{}
	ac := NewAutocomplete(remoteProps(), model.Handlers{}, WithFetcher(fetcher), WithObserver(observer))
	defer ac.Close()

	require.NoError(t, ac.Input("a"))
	require.Equal(t, "a", <-started)
	require.NoError(t, ac.Input("ab"))
	require.Equal(t, "ab", <-started)

	close(release["ab"])
	require.Eventually(t, func() bool {
		_, applied, _, _ := observer.snapshot()
		return applied == 1
	}, time.Second, 5*time.Millisecond)

	close(release["a"])
	ac.Wait()

	require.Equal(t, results["ab"], ac.Suggestions())
	require.Equal(t, "ab", ac.State().InputText)
	_, applied, discarded, failed := observer.snapshot()
	require.Equal(t, 1, applied)
	require.Equal(t, 1, discarded)
	require.Zero(t, failed)
}

func TestAutocompleteWithEnumOptionsNeverFetches(t *testing.T) {
	calls := 0
	fetcher := FetcherFunc(func(context.Context, string, string) ([]option.Option, error) {
		calls++
		return nil, nil
	})
	props := remoteProps()
	props.Options.EnumOptions = letterOptions()

	ac := NewAutocomplete(props, model.Handlers{}, WithFetcher(fetcher))
	defer ac.Close()

	for _, text := range []string{"", "a", "abc", ""} {
		require.NoError(t, ac.Input(text))
		ac.Wait()
		require.Equal(t, letterOptions(), ac.Displayed())
	}
	require.Zero(t, calls)
	require.False(t, ac.FreeInput())
}

func TestAutocompleteDisplayRule(t *testing.T) {
	fetcher := FetcherFunc(func(_ context.Context, _ string, query string) ([]option.Option, error) {
		return []option.Option{{Label: query, Value: query}}, nil
	})
	ac := NewAutocomplete(remoteProps(), model.Handlers{}, WithFetcher(fetcher))
	defer ac.Close()

	require.Empty(t, ac.Displayed(), "idle input shows nothing")

	require.NoError(t, ac.Input("par"))
	ac.Wait()
	require.Equal(t, []option.Option{{Label: "par", Value: "par"}}, ac.Displayed())

	require.NoError(t, ac.Input(""))
	ac.Wait()
	require.Empty(t, ac.Displayed(), "cleared input hides suggestions")
}

func TestAutocompleteFetchFailureKeepsState(t *testing.T) {
	failing := errors.New("upstream down")
	fetcher := FetcherFunc(func(_ context.Context, _ string, query string) ([]option.Option, error) {
		switch query {
		case "bad":
			return nil, failing
		case "boom":
			panic("fetcher exploded")
		}
		return []option.Option{{Label: query, Value: query}}, nil
	})
	observer := &recordingObserver{}
	ac := NewAutocomplete(remoteProps(), model.Handlers{}, WithFetcher(fetcher), WithObserver(observer))
	defer ac.Close()

	require.NoError(t, ac.Input("ok"))
	ac.Wait()
	good := ac.Suggestions()

	require.NoError(t, ac.Input("bad"))
	ac.Wait()
	require.Equal(t, good, ac.Suggestions())

	require.NoError(t, ac.Input("boom"))
	ac.Wait()
	require.Equal(t, good, ac.Suggestions())

	require.NoError(t, ac.Input("retry"))
	ac.Wait()
	require.Equal(t, []option.Option{{Label: "retry", Value: "retry"}}, ac.Suggestions())

	_, applied, _, failed := observer.snapshot()
	require.Equal(t, 2, applied)
	require.Equal(t, 2, failed)
}

func TestAutocompleteMisconfiguredDegradesToEmpty(t *testing.T) {
	ac := NewAutocomplete(remoteProps(), model.Handlers{})
	defer ac.Close()

	require.NoError(t, ac.Input("anything"))
	ac.Wait()
	require.Empty(t, ac.Displayed())
	require.False(t, ac.FreeInput())
}

func TestAutocompleteDebounceCoalescesKeystrokes(t *testing.T) {
	var (
		mu      sync.Mutex
		queries []string
	)
	fetcher := FetcherFunc(func(_ context.Context, _ string, query string) ([]option.Option, error) {
		mu.Lock()
		queries = append(queries, query)
		mu.Unlock()
		return []option.Option{{Value: query}}, nil
	})
	ac := NewAutocomplete(remoteProps(), model.Handlers{}, WithFetcher(fetcher), WithDebounce(100*time.Millisecond))
	defer ac.Close()

	for _, text := range []string{"b", "be", "ber"} {
		require.NoError(t, ac.Input(text))
	}
	ac.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, []string{"ber"}, queries)
	require.Equal(t, []option.Option{{Value: "ber"}}, ac.Suggestions())
}

func TestAutocompleteDeduplicatesByValue(t *testing.T) {
	fetcher := FetcherFunc(func(context.Context, string, string) ([]option.Option, error) {
		return []option.Option{
			{Label: "Paris", Value: "par"},
			{Label: "Paris (dup)", Value: "par"},
			{Label: "Parma", Value: "pmf"},
		}, nil
	})
	ac := NewAutocomplete(remoteProps(), model.Handlers{}, WithFetcher(fetcher))
	defer ac.Close()

	require.NoError(t, ac.Input("pa"))
	ac.Wait()
	require.Equal(t, []option.Option{
		{Label: "Paris", Value: "par"},
		{Label: "Parma", Value: "pmf"},
	}, ac.Suggestions())
}

func TestAutocompleteSelectAndBlurInFreeInputMode(t *testing.T) {
	fetcher := FetcherFunc(func(context.Context, string, string) ([]option.Option, error) {
		return []option.Option{{Label: "Lisbon", Value: "lis"}}, nil
	})
	var changes []any
	var blurred any
	handlers := model.Handlers{
		OnChange: func(v any) { changes = append(changes, v) },
		OnBlur:   func(_ string, v any) { blurred = v },
	}
	ac := NewAutocomplete(remoteProps(), handlers, WithFetcher(fetcher))
	defer ac.Close()
	require.True(t, ac.FreeInput())

	require.NoError(t, ac.Input("lis"))
	ac.Wait()

	require.Equal(t, "lis", ac.Select(0))
	require.Equal(t, "lis", ac.Select(map[string]any{"label": "other", "value": "lis"}))
	require.Equal(t, "Lisboa", ac.Select("Lisboa"))

	ac.Blur("Lisbon typed")
	require.Equal(t, "Lisbon typed", blurred)
	require.Equal(t, []any{"lis", "lis", "Lisboa", "Lisbon typed"}, changes)
}

func TestAutocompleteStaticSelectUsesIndexMapping(t *testing.T) {
	props := remoteProps()
	props.Options.AutocompleteType = ""
	props.Options.EnumOptions = letterOptions()
	props.Options.EmptyValue = "none"

	var focused any
	ac := NewAutocomplete(props, model.Handlers{OnFocus: func(_ string, v any) { focused = v }})
	defer ac.Close()

	require.Equal(t, "b", ac.Select("1"))
	require.Equal(t, "none", ac.Select("free text"))
	require.Equal(t, "c", ac.Select(option.Option{Label: "C", Value: "c"}))
	require.Equal(t, []any{"a", "c"}, ac.Select([]any{0, "2"}))

	ac.Focus("0")
	require.Equal(t, "a", focused)
}

func TestAutocompleteMatchesPostedText(t *testing.T) {
	props := remoteProps()
	props.Options.AutocompleteType = ""
	props.Options.EnumOptions = []option.Option{{Label: "Small", Value: "s"}, {Label: "Medium", Value: "m"}}
	props.Options.EnumDisabled = []any{"s"}
	ac := NewAutocomplete(props, model.Handlers{})
	defer ac.Close()

	tests := []struct {
		text     string
		index    int
		disabled bool
	}{
		{text: "m (Medium)", index: 1},
		{text: " m ", index: 1},
		{text: "medium", index: 1},
		{text: "s (Small)", index: 0, disabled: true},
		{text: "Large", index: option.NoIndex},
		{text: "", index: option.NoIndex},
	}
	for _, tt := range tests {
		idx, disabled := ac.Match(tt.text)
		require.Equal(t, tt.index, idx, tt.text)
		require.Equal(t, tt.disabled, disabled, tt.text)
	}
}

func TestAutocompleteCloseRejectsInput(t *testing.T) {
	ac := NewAutocomplete(remoteProps(), model.Handlers{})
	ac.Close()
	require.ErrorIs(t, ac.Input("x"), ErrClosed)
}

func TestAutocompleteResetClearsState(t *testing.T) {
	fetcher := FetcherFunc(func(_ context.Context, _ string, query string) ([]option.Option, error) {
		return []option.Option{{Value: query}}, nil
	})
	ac := NewAutocomplete(remoteProps(), model.Handlers{}, WithFetcher(fetcher))
	defer ac.Close()

	require.NoError(t, ac.Input("x"))
	ac.Wait()
	ac.Reset()
	require.Equal(t, InputState{}, ac.State())
}

func TestAutocompleteView(t *testing.T) {
	props := remoteProps()
	props.Options.AutocompleteType = ""
	props.Options.EnumOptions = letterOptions()
	props.Value = "b"
	props.Disabled = true

	view := NewAutocomplete(props, model.Handlers{}).View()
	require.Equal(t, "b (B)", view.Items[1].Label)
	require.Equal(t, "b (B)", view.Value)
	require.True(t, view.Items[1].Selected)
	require.False(t, view.Items[0].Selected)
	require.True(t, view.Disabled)
	require.False(t, view.FreeInput)
	require.Len(t, view.Items, 3)
}
