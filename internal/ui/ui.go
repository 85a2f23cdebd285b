package ui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/moodmix/internal/models"
	"github.com/desertthunder/moodmix/internal/session"
	"github.com/desertthunder/moodmix/internal/shared"
)

// Backend is what the TUI needs from the gateway. [client.Bound] satisfies it.
type Backend interface {
	session.ReplacementFetcher
	Generate(ctx context.Context, cfg models.GenerationConfig) ([]models.Track, error)
	CreatePlaylist(ctx context.Context, name, description string, tracks []string) (*models.PlaylistRef, error)
}

// ViewState represents the current view in the TUI.
type ViewState int

const (
	MoodListView ViewState = iota
	GeneratingView
	TrackListView
	SavingView
	ResultView
)

// Options configures a [Model].
type Options struct {
	Backend Backend
	Moods   []models.MoodPreset      // defaults to models.MoodPresets
	Limit   int                      // tracks per mix; zero uses the gateway default
	Initial *models.GenerationConfig // generate immediately instead of showing the mood list
	Title   string                   // list title for Initial
	Open    func(url string) error   // opens the saved playlist; defaults to shared.OpenBrowser
}

// Model represents the TUI application state.
//
// Only one request is in flight at a time; keys that would start another are ignored while
// pending is set.
type Model struct {
	ctx       context.Context
	view      ViewState
	backend   Backend
	open      func(string) error
	limit     int
	initial   *models.GenerationConfig
	width     int
	height    int
	moodList  list.Model
	trackList list.Model
	session   session.Session
	title     string
	pending   bool
	status    string
	playlist  *models.PlaylistRef
	err       error
	spinner   spinner.Model
	help      help.Model
	keys      keyMap
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, opts Options) *Model {
	moods := opts.Moods
	if len(moods) == 0 {
		moods = models.MoodPresets()
	}
	open := opts.Open
	if open == nil {
		open = shared.OpenBrowser
	}

	moodList := list.New(moodItems(moods), styles.delegate(), 0, 0)
	moodList.Title = "Pick a mood"

	trackList := list.New(nil, styles.delegate(), 0, 0)

	return &Model{
		ctx:       ctx,
		view:      MoodListView,
		backend:   opts.Backend,
		open:      open,
		limit:     opts.Limit,
		initial:   opts.Initial,
		title:     opts.Title,
		moodList:  moodList,
		trackList: trackList,
		spinner:   spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:      help.New(),
		keys:      newKeyMap(),
	}
}

// Init starts generation when an initial config was given.
func (m *Model) Init() tea.Cmd {
	if m.initial == nil {
		return nil
	}
	title := m.title
	if title == "" {
		title = m.initial.String()
	}
	return m.startGenerate(*m.initial, title)
}

// ViewState returns the current view.
func (m *Model) ViewState() ViewState { return m.view }

// Session returns the current track list state.
func (m *Model) Session() session.Session { return m.session }

// Pending reports whether a request is in flight.
func (m *Model) Pending() bool { return m.pending }

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.moodList.SetSize(msg.Width-4, msg.Height-8)
		m.trackList.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case MoodListView:
			return m.handleMoodListKeys(msg)
		case TrackListView:
			return m.handleTrackListKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		default:
			if key.Matches(msg, m.keys.quit) {
				return m, tea.Quit
			}
			return m, nil
		}

	case spinner.TickMsg:
		if !m.pending {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case Msg:
		return m.handleMsg(msg)
	}

	return m.updateLists(msg)
}

func (m *Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgTracksGenerated:
		data := msg.data.(generatedData)
		m.pending = false
		if data.err != nil {
			m.err = data.err
			m.view = MoodListView
			return m, nil
		}
		m.err = nil
		m.session = session.Start(data.cfg, data.tracks)
		m.status = fmt.Sprintf("%d tracks", len(data.tracks))
		m.view = TrackListView
		return m, m.refreshTracks()

	case MsgTrackReplaced:
		data := msg.data.(replacedData)
		m.pending = false
		m.session = data.session
		switch {
		case errors.Is(data.err, shared.ErrNoCandidates):
			m.status = fmt.Sprintf("Removed %s; no more tracks like it", data.removed.Name)
		case data.err != nil:
			m.status = fmt.Sprintf("Removed %s; replacement failed: %v", data.removed.Name, data.err)
		default:
			m.status = fmt.Sprintf("Replaced %s with %s", data.removed.Name, data.replacement.Name)
		}
		return m, m.refreshTracks()

	case MsgPlaylistSaved:
		data := msg.data.(savedData)
		m.pending = false
		m.playlist = data.playlist
		m.err = data.err
		if m.err == nil && m.playlist == nil {
			m.err = fmt.Errorf("%w: empty playlist response", shared.ErrAPIRequest)
		}
		m.view = ResultView
		return m, nil

	case MsgBrowserOpened:
		if err, _ := msg.data.(error); err != nil {
			m.status = fmt.Sprintf("Could not open browser: %v", err)
		}
		return m, nil
	}
	return m, nil
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case MoodListView:
		return m.renderMoodList()
	case GeneratingView:
		return fmt.Sprintf("%s\n\n%s Generating %s...", styles.title.Render("moodmix"), m.spinner.View(), m.title)
	case TrackListView:
		return m.renderTrackList()
	case SavingView:
		return fmt.Sprintf("%s\n\n%s Saving %d tracks...", styles.title.Render(m.title), m.spinner.View(), m.session.Len())
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

func (m *Model) handleMoodListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.moodList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.enter):
		if item, ok := m.moodList.SelectedItem().(moodItem); ok {
			return m, m.startGenerate(item.mood.Config(m.limit), item.mood.Name)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.moodList, cmd = m.moodList.Update(msg)
	return m, cmd
}

func (m *Model) handleTrackListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.trackList.FilterState() == list.Filtering {
		return m.updateLists(msg)
	}

	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.back):
		if m.pending {
			return m, nil
		}
		m.view = MoodListView
		m.status = ""
		return m, nil
	case key.Matches(msg, m.keys.replace):
		return m, m.startReplace()
	case key.Matches(msg, m.keys.save):
		return m, m.startSave()
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.open):
		if m.playlist == nil || m.playlist.URL == "" {
			return m, nil
		}
		url := m.playlist.URL
		return m, func() tea.Msg { return browserOpenedMsg(m.open(url)) }
	case key.Matches(msg, m.keys.back):
		if m.err != nil {
			m.view = TrackListView
			m.err = nil
		}
		return m, nil
	case key.Matches(msg, m.keys.restart):
		m.view = MoodListView
		m.session = session.Session{}
		m.playlist = nil
		m.err = nil
		m.status = ""
		return m, nil
	}
	return m, nil
}

func (m *Model) updateLists(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case MoodListView:
		m.moodList, cmd = m.moodList.Update(msg)
	case TrackListView:
		m.trackList, cmd = m.trackList.Update(msg)
	}
	return m, cmd
}

func (m *Model) startGenerate(cfg models.GenerationConfig, title string) tea.Cmd {
	if m.pending {
		return nil
	}
	m.pending = true
	m.err = nil
	m.title = title
	m.view = GeneratingView

	ctx, backend := m.ctx, m.backend
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		tracks, err := backend.Generate(ctx, cfg)
		return tracksGeneratedMsg(cfg, tracks, err)
	})
}

// startReplace removes the selected track at once and asks for a replacement in the background.
func (m *Model) startReplace() tea.Cmd {
	if m.pending {
		return nil
	}
	item, ok := m.trackList.SelectedItem().(trackItem)
	if !ok {
		return nil
	}
	m.pending = true

	before := m.session
	m.session = before.Remove(item.track.ID)
	m.status = fmt.Sprintf("Replacing %s...", item.track.Name)

	ctx, backend, removed := m.ctx, m.backend, item.track
	return tea.Batch(m.refreshTracks(), m.spinner.Tick, func() tea.Msg {
		next, replacement, err := before.RemoveAndReplace(ctx, backend, removed.ID)
		return trackReplacedMsg(next, replacement, removed, err)
	})
}

func (m *Model) startSave() tea.Cmd {
	if m.pending || m.session.Len() == 0 {
		return nil
	}
	m.pending = true
	m.view = SavingView

	ctx, backend := m.ctx, m.backend
	name := m.title + " mix"
	description := fmt.Sprintf("Created with moodmix (%s)", m.session.Config)
	uris := models.TrackURIs(m.session.Tracks)
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		ref, err := backend.CreatePlaylist(ctx, name, description, uris)
		return playlistSavedMsg(ref, err)
	})
}

func (m *Model) refreshTracks() tea.Cmd {
	m.trackList.Title = fmt.Sprintf("%s • %d tracks", m.title, m.session.Len())
	return m.trackList.SetItems(trackItems(m.session.Tracks))
}

func (m *Model) renderMoodList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.enter, m.keys.quit})
	out := m.moodList.View()
	if m.err != nil {
		out += "\n" + styles.err.Render(fmt.Sprintf("Error: %v", m.err))
	}
	return fmt.Sprintf("%s\n\n%s", out, helpView)
}

func (m *Model) renderTrackList() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.replace, m.keys.save, m.keys.back, m.keys.quit})
	status := styles.help.Render(m.status)
	if m.pending {
		status = m.spinner.View() + " " + status
	}
	return fmt.Sprintf("%s\n%s\n\n%s", m.trackList.View(), status, helpView)
}

func (m *Model) renderResult() string {
	if m.err != nil {
		helpView := m.help.ShortHelpView([]key.Binding{m.keys.back, m.keys.quit})
		return fmt.Sprintf("%s\n\n%s", styles.err.Render(fmt.Sprintf("Saving failed: %v", m.err)), helpView)
	}

	title := styles.ok.Render("✓ Playlist saved")
	info := fmt.Sprintf("\nName: %s\nTracks: %d", m.playlist.Name, m.session.Len())
	if m.playlist.URL != "" {
		info += fmt.Sprintf("\nURL: %s", m.playlist.URL)
	}
	if m.status != "" {
		info += "\n" + styles.warn.Render(m.status)
	}

	helpView := m.help.ShortHelpView([]key.Binding{m.keys.open, m.keys.restart, m.keys.quit})
	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
