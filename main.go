// hisassist - embedded assistant engine for the hospital operations portal.
//
// This binary is a terminal harness around the engine: it wires the
// in-memory portal services so the classify/route/tool pipeline can be
// exercised without the web portal in front of it.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/hisassist/internal/chat"
	"github.com/jeranaias/hisassist/internal/config"
	"github.com/jeranaias/hisassist/internal/portal"
	"github.com/jeranaias/hisassist/internal/routes"
)

// Version information (set at build time)
var (
	Version   = "1.0.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "hisassist.toml", "path to the TOML config file")
	logPath := flag.String("log", "hisassist.log", "path to the debug log file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("hisassist %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	logger := newFileLogger(*logPath)
	defer logger.Sync()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	auth := portal.NewMemoryAuth()
	auth.Login(&portal.User{
		ID:          "demo",
		FullName:    "Trần Thị Bình",
		Roles:       []string{"nurse"},
		Permissions: []string{"reports", "pharmacy"},
	}, "demo-token")

	theme := portal.NewMemoryTheme()
	navigator := portal.NewMemoryNavigator("/app/home")

	engine := chat.New(cfg, chat.Services{
		Auth:      auth,
		Theme:     theme,
		Navigator: navigator,
		RouteTree: demoRouteTree(),
		AppRoot:   "app",
	}, logger)
	defer engine.Close()

	// Config edits apply live; a broken file keeps the last good config.
	watcher, err := config.Watch(*configPath, logger, func(next *config.Config) {
		engine.ApplyConfig(next)
	})
	if err != nil {
		logger.Warn("config watcher disabled", zap.Error(err))
	} else {
		defer watcher.Close()
	}

	engine.ToggleChat()

	p := tea.NewProgram(newShell(engine, theme, navigator), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// newFileLogger logs to a file so output never tears the TUI.
func newFileLogger(path string) *zap.Logger {
	zcfg := zap.NewProductionConfig()
	zcfg.OutputPaths = []string{path}
	zcfg.ErrorOutputPaths = []string{path}
	logger, err := zcfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// demoRouteTree mirrors the portal's screen layout.
func demoRouteTree() *routes.Route {
	return &routes.Route{
		Path:  "app",
		Title: "Trang chủ",
		Children: []*routes.Route{
			{Path: "home", Title: "Trang chủ"},
			{Path: "settings", Title: "Cài đặt", Children: []*routes.Route{
				{Path: "account", Title: "Tài khoản", Keywords: []string{"mật khẩu", "đổi mật khẩu"}},
			}},
			{Path: "profile", Title: "Hồ sơ cá nhân"},
			{Path: "reports", Title: "Báo cáo", Permission: "reports", Children: []*routes.Route{
				{Path: "bed-usage", Title: "Báo cáo giường", Permission: "reports/bed-usage",
					Keywords: []string{"giường bệnh", "công suất giường"}},
				{Path: "revenue", Title: "Báo cáo doanh thu", Permission: "reports/revenue",
					Keywords: []string{"doanh thu", "viện phí"}},
			}},
			{Path: "pharmacy", Title: "Kho dược", Permission: "pharmacy", Children: []*routes.Route{
				{Path: "inventory", Title: "Tồn kho dược", Permission: "pharmacy/inventory",
					Keywords: []string{"thuốc", "tồn kho"}},
			}},
			{Path: "admin", Title: "Quản trị hệ thống", Permission: "admin"},
		},
	}
}

// =============================================================================
// TUI SHELL
// =============================================================================

type tickMsg time.Time

// shell is the terminal front end. All assistant state lives in the
// engine; the shell polls and renders.
type shell struct {
	engine    *chat.Orchestrator
	theme     *portal.MemoryTheme
	navigator *portal.MemoryNavigator

	viewport viewport.Model
	input    textinput.Model
	spin     spinner.Model
	width    int
	height   int
	ready    bool
}

func newShell(engine *chat.Orchestrator, theme *portal.MemoryTheme, navigator *portal.MemoryNavigator) *shell {
	ti := textinput.New()
	ti.Placeholder = "Nhập tin nhắn... (Enter gửi, Esc dừng, Ctrl+R làm mới, Ctrl+C thoát)"
	ti.CharLimit = 1000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Line

	return &shell{
		engine:    engine,
		theme:     theme,
		navigator: navigator,
		input:     ti,
		spin:      sp,
	}
}

func (s *shell) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, s.spin.Tick, tick())
}

func tick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (s *shell) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		s.width = msg.Width
		s.height = msg.Height
		vpHeight := msg.Height - 4
		if vpHeight < 3 {
			vpHeight = 3
		}
		if !s.ready {
			s.viewport = viewport.New(msg.Width, vpHeight)
			s.ready = true
		} else {
			s.viewport.Width = msg.Width
			s.viewport.Height = vpHeight
		}
		s.input.Width = msg.Width - 4
		return s, nil

	case tickMsg:
		s.viewport.SetContent(s.renderTranscript())
		s.viewport.GotoBottom()
		return s, tick()

	case spinner.TickMsg:
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return s, tea.Quit
		case tea.KeyEsc:
			s.engine.StopGeneration()
			return s, nil
		case tea.KeyCtrlR:
			s.engine.ResetChat()
			return s, nil
		case tea.KeyEnter:
			text := strings.TrimSpace(s.input.Value())
			if text != "" && s.engine.SendMessage(text) {
				s.input.Reset()
			}
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.input, cmd = s.input.Update(msg)
	return s, cmd
}

func (s *shell) View() string {
	if !s.ready {
		return "Đang khởi động..."
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		s.viewport.View(),
		s.renderStatus(),
		s.renderInput(),
	)
}

func (s *shell) styles() (user, assistant, errStyle lipgloss.Style) {
	if s.theme.IsDark() {
		user = lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true)
		assistant = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	} else {
		user = lipgloss.NewStyle().Foreground(lipgloss.Color("27")).Bold(true)
		assistant = lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	}
	errStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	return user, assistant, errStyle
}

func (s *shell) renderTranscript() string {
	userStyle, assistantStyle, errStyle := s.styles()

	var b strings.Builder
	for _, m := range s.engine.Messages() {
		switch {
		case m.Role == chat.RoleUser:
			b.WriteString(userStyle.Render("Bạn: "+m.Content) + "\n\n")
		case m.IsError:
			b.WriteString(errStyle.Render("Trợ lý: "+m.Content) + "\n\n")
		case m.IsStreaming && m.Content == "":
			b.WriteString(assistantStyle.Render("Trợ lý: "+s.spin.View()) + "\n\n")
		default:
			b.WriteString(assistantStyle.Render("Trợ lý: "+m.Content) + "\n\n")
		}
	}
	return b.String()
}

func (s *shell) renderStatus() string {
	parts := []string{"màn hình: " + s.navigator.CurrentURL()}
	if s.engine.IsOffline() {
		parts = append(parts, "ngoại tuyến — hotline "+s.engine.Hotline())
	}
	if s.engine.IsGenerating() {
		parts = append(parts, "đang trả lời "+s.spin.View())
	}
	if s.engine.IsNavigating() {
		parts = append(parts, "đang chuyển màn hình")
	}
	style := lipgloss.NewStyle().Faint(true)
	return style.Render(strings.Join(parts, "  |  "))
}

func (s *shell) renderInput() string {
	return lipgloss.NewStyle().PaddingLeft(1).Render(s.input.View())
}
