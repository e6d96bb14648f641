package main

import (
	"encoding/json"
	"fmt"
	"image/color"
	"log"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

const (
	cellSize          = 40
	headerHeight      = 80
	screenWidth       = 900
	screenHeight      = 760
	defaultBaseURL    = "http://localhost:8080"
	animationDuration = 120 * time.Millisecond // per cell
	maxSessions       = 9
)

// ScreenType represents different screens in the app
type ScreenType int

const (
	ScreenWelcome ScreenType = iota
	ScreenGame
)

// SessionData holds data for a single session
type SessionData struct {
	sessionID  string
	state      *GameState
	wsConn     *websocket.Conn
	lastUpdate time.Time
	anim       *animation
	lastEvent  string
}

// Game represents the desktop game client
type Game struct {
	client           *Client
	sessions         []*SessionData
	activeSession    int
	stateMutex       sync.RWMutex
	currentScreen    ScreenType
	welcomeScreen    *WelcomeScreen
	selectedSessions map[string]bool
}

// WelcomeScreen manages the welcome screen state
type WelcomeScreen struct {
	availableSessions []SessionInfo
	availableConfigs  []ConfigInfo
	cursorPos         int
	loading           bool
	errorMsg          string
	newSessionConfig  string
}

// NewGame creates a new game instance with initial sessions
func NewGame(client *Client, sessionIDs []string) *Game {
	g := &Game{
		client:           client,
		currentScreen:    ScreenWelcome,
		selectedSessions: make(map[string]bool),
		welcomeScreen:    &WelcomeScreen{},
	}

	// If session IDs provided, skip welcome screen and go straight to game
	if len(sessionIDs) > 0 {
		for _, sid := range sessionIDs {
			g.addSession(sid)
		}
		g.currentScreen = ScreenGame
	} else {
		g.loadWelcomeData()
	}

	return g
}

// addSession attaches a session; an empty id creates one on the active level
func (g *Game) addSession(sessionID string) {
	if sessionID == "" {
		configName := ""
		if active := g.active(); active != nil && active.state != nil {
			configName = active.state.ConfigName
		}
		info, err := g.client.CreateSession(configName)
		if err != nil {
			log.Printf("Failed to create session: %v", err)
			return
		}
		sessionID = info.ID
	}

	session := &SessionData{sessionID: sessionID, lastUpdate: time.Now()}
	g.sessions = append(g.sessions, session)

	conn, err := g.client.Dial(sessionID)
	if err != nil {
		log.Printf("Failed to connect WebSocket for %s: %v (falling back to polling)", sessionID, err)
	} else {
		session.wsConn = conn
		go g.listenWebSocket(session)
	}

	g.fetchGameState(session)
}

func (g *Game) active() *SessionData {
	if g.activeSession < len(g.sessions) {
		return g.sessions[g.activeSession]
	}
	return nil
}

// listenWebSocket applies pushed states until the connection closes
func (g *Game) listenWebSocket(session *SessionData) {
	defer func() {
		g.stateMutex.Lock()
		session.wsConn = nil
		g.stateMutex.Unlock()
	}()

	for {
		_, message, err := session.wsConn.ReadMessage()
		if err != nil {
			log.Printf("WebSocket read error for %s: %v", session.sessionID, err)
			session.wsConn.Close()
			return
		}

		var wsMsg WSMessage
		if err := json.Unmarshal(message, &wsMsg); err != nil {
			log.Printf("WebSocket JSON parse error: %v", err)
			continue
		}
		if wsMsg.Event == "session_closed" {
			log.Printf("Session %s closed by server", session.sessionID)
			session.wsConn.Close()
			return
		}
		if wsMsg.GameState == nil {
			continue
		}

		g.applyState(session, wsMsg.GameState, wsMsg.Events)
	}
}

// applyState stores a new state and starts animating actors that moved
func (g *Game) applyState(session *SessionData, state *GameState, events []GameEvent) {
	g.stateMutex.Lock()
	defer g.stateMutex.Unlock()

	if session.state != nil && session.state.Frame != state.Frame {
		session.anim = newAnimation(session.state, state, time.Now())
	}
	session.state = state
	session.lastUpdate = time.Now()
	if len(events) > 0 {
		last := events[len(events)-1]
		session.lastEvent = fmt.Sprintf("%s: %s", last.Type, last.Message)
	}
}

// fetchGameState gets the current game state from the server
func (g *Game) fetchGameState(session *SessionData) error {
	state, err := g.client.State(session.sessionID)
	if err != nil {
		return err
	}
	g.applyState(session, state, nil)
	return nil
}

// loadWelcomeData fetches available sessions and levels from the server
func (g *Game) loadWelcomeData() {
	ws := g.welcomeScreen
	ws.loading = true
	ws.errorMsg = ""
	defer func() { ws.loading = false }()

	sessions, err := g.client.ListSessions()
	if err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading sessions: %v", err)
		return
	}
	ws.availableSessions = sessions

	configs, err := g.client.ListConfigs()
	if err != nil {
		ws.errorMsg = fmt.Sprintf("Error loading levels: %v", err)
		return
	}
	ws.availableConfigs = configs
}

// createNewSessionFromWelcome creates a session on the chosen level and selects it
func (g *Game) createNewSessionFromWelcome() error {
	info, err := g.client.CreateSession(g.welcomeScreen.newSessionConfig)
	if err != nil {
		return err
	}
	g.selectedSessions[info.ID] = true
	g.loadWelcomeData()
	return nil
}

// startGameWithSelectedSessions transitions to game screen with selected sessions
func (g *Game) startGameWithSelectedSessions() {
	if len(g.selectedSessions) == 0 {
		g.welcomeScreen.errorMsg = "Please select at least one session"
		return
	}

	for sessionID := range g.selectedSessions {
		g.addSession(sessionID)
	}
	g.selectedSessions = make(map[string]bool)
	g.currentScreen = ScreenGame
}

// sendClick forwards a board click on the active session
func (g *Game) sendClick(button string, column, row int) {
	session := g.active()
	if session == nil {
		return
	}
	result, err := g.client.Click(session.sessionID, button, column, row)
	if err != nil {
		session.lastEvent = err.Error()
		return
	}
	if session.wsConn == nil && result.GameState != nil {
		g.applyState(session, result.GameState, result.Events)
	}
}

func (g *Game) sendEndTurn() {
	session := g.active()
	if session == nil {
		return
	}
	result, err := g.client.EndTurn(session.sessionID)
	if err != nil {
		session.lastEvent = err.Error()
		return
	}
	if session.wsConn == nil && result.GameState != nil {
		g.applyState(session, result.GameState, result.Events)
	}
}

func (g *Game) sendReset() {
	session := g.active()
	if session == nil {
		return
	}
	state, err := g.client.Reset(session.sessionID)
	if err != nil {
		session.lastEvent = err.Error()
		return
	}
	if session.wsConn == nil && state != nil {
		g.applyState(session, state, nil)
	}
}

// Update updates game logic
func (g *Game) Update() error {
	switch g.currentScreen {
	case ScreenWelcome:
		return g.updateWelcomeScreen()
	case ScreenGame:
		return g.updateGameScreen()
	}
	return nil
}

// updateWelcomeScreen handles welcome screen input
func (g *Game) updateWelcomeScreen() error {
	ws := g.welcomeScreen

	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		g.loadWelcomeData()
	}

	totalItems := len(ws.availableSessions)
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowDown) && ws.cursorPos < totalItems-1 {
		ws.cursorPos++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyArrowUp) && ws.cursorPos > 0 {
		ws.cursorPos--
	}

	if inpututil.IsKeyJustPressed(ebiten.KeySpace) && ws.cursorPos < totalItems {
		sessionID := ws.availableSessions[ws.cursorPos].ID
		if g.selectedSessions[sessionID] {
			delete(g.selectedSessions, sessionID)
		} else {
			g.selectedSessions[sessionID] = true
		}
	}

	// Cycle through levels with Tab; past the last one means the server default
	if inpututil.IsKeyJustPressed(ebiten.KeyTab) && len(ws.availableConfigs) > 0 {
		next := 0
		for i, cfg := range ws.availableConfigs {
			if cfg.ConfigID == ws.newSessionConfig {
				next = i + 1
				break
			}
		}
		if next >= len(ws.availableConfigs) {
			ws.newSessionConfig = ""
		} else {
			ws.newSessionConfig = ws.availableConfigs[next].ConfigID
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) {
		if err := g.createNewSessionFromWelcome(); err != nil {
			ws.errorMsg = fmt.Sprintf("Failed to create session: %v", err)
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) {
		g.startGameWithSelectedSessions()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) && len(g.sessions) > 0 {
		g.currentScreen = ScreenGame
	}

	return nil
}

// updateGameScreen handles game screen input
func (g *Game) updateGameScreen() error {
	if len(g.sessions) == 0 {
		if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
			g.currentScreen = ScreenWelcome
			g.loadWelcomeData()
		}
		return nil
	}

	// Poll sessions without a websocket
	for _, session := range g.sessions {
		g.stateMutex.RLock()
		polling := session.wsConn == nil && time.Since(session.lastUpdate) > 500*time.Millisecond
		g.stateMutex.RUnlock()
		if polling {
			if err := g.fetchGameState(session); err != nil {
				log.Printf("Error fetching state for %s: %v", session.sessionID, err)
			}
		}
	}

	for i := ebiten.Key1; i <= ebiten.Key9; i++ {
		if inpututil.IsKeyJustPressed(i) {
			idx := int(i - ebiten.Key1)
			if idx < len(g.sessions) {
				g.activeSession = idx
				log.Printf("Switched to session %d: %s", idx+1, g.sessions[idx].sessionID)
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyN) && len(g.sessions) < maxSessions {
		g.addSession("")
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyE) {
		g.sendEndTurn()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.sendReset()
	}

	g.stateMutex.RLock()
	state := g.active().state
	g.stateMutex.RUnlock()
	if state != nil {
		x, y := ebiten.CursorPosition()
		if column, row, ok := cellAtPixel(state, x, y); ok {
			if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
				g.sendClick("left", column, row)
			}
			if inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonRight) {
				g.sendClick("right", column, row)
			}
		}
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.currentScreen = ScreenWelcome
		g.loadWelcomeData()
	}

	return nil
}

// Draw renders the game
func (g *Game) Draw(screen *ebiten.Image) {
	switch g.currentScreen {
	case ScreenWelcome:
		g.drawWelcomeScreen(screen)
	case ScreenGame:
		g.drawGameScreen(screen)
	}
}

// drawWelcomeScreen renders the welcome/session selection screen
func (g *Game) drawWelcomeScreen(screen *ebiten.Image) {
	ws := g.welcomeScreen
	screen.Fill(color.RGBA{20, 20, 30, 255})

	y := 20
	ebitenutil.DebugPrintAt(screen, "=== GRIDBALL - SESSION SELECT ===", 300, y)
	y += 30

	if ws.loading {
		ebitenutil.DebugPrintAt(screen, "Loading sessions...", 20, y)
		return
	}
	if ws.errorMsg != "" {
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("ERROR: %s", ws.errorMsg), 20, y)
		y += 20
	}

	ebitenutil.DebugPrintAt(screen, "Available Sessions:", 20, y)
	y += 20
	if len(ws.availableSessions) == 0 {
		ebitenutil.DebugPrintAt(screen, "  No sessions found. Press N to create one.", 20, y)
		y += 20
	}
	for i, session := range ws.availableSessions {
		cursor := "  "
		if i == ws.cursorPos {
			cursor = "> "
		}
		checkbox := "[ ]"
		if g.selectedSessions[session.ID] {
			checkbox = "[X]"
		}

		status := ""
		if s := session.GameState; s != nil {
			status = fmt.Sprintf(" | turn %d | %s", s.Turn, s.Mode)
			if s.Victory {
				status += " VICTORY"
			}
		}

		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s%s %s | %s%s", cursor, checkbox, session.ID, session.ConfigName, status), 20, y)
		y += 15
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, "Create New Session:", 20, y)
	y += 20
	levelDisplay := "default"
	if ws.newSessionConfig != "" {
		levelDisplay = ws.newSessionConfig
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("  Selected Level: %s", levelDisplay), 20, y)
	y += 15
	for _, cfg := range ws.availableConfigs {
		marker := "  "
		if cfg.ConfigID == ws.newSessionConfig {
			marker = "→ "
		}
		ebitenutil.DebugPrintAt(screen, fmt.Sprintf("    %s%s (%dx%d) - %s", marker, cfg.ConfigID, cfg.Columns, cfg.Rows, cfg.Description), 20, y)
		y += 15
	}

	y += 20
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("Selected: %d session(s)", len(g.selectedSessions)), 20, y)
	y += 30

	controls := []string{
		"CONTROLS:",
		"  ↑/↓      - Navigate sessions",
		"  SPACE    - Toggle session selection",
		"  TAB      - Cycle level for new session",
		"  N        - Create new session with selected level",
		"  ENTER    - Start game with selected sessions",
		"  F5       - Refresh session list",
	}
	if len(g.sessions) > 0 {
		controls = append(controls, "  ESC      - Back to game")
	}
	for _, line := range controls {
		ebitenutil.DebugPrintAt(screen, line, 20, y)
		y += 15
	}
}

// drawGameScreen renders the active session's board
func (g *Game) drawGameScreen(screen *ebiten.Image) {
	g.stateMutex.RLock()
	defer g.stateMutex.RUnlock()

	screen.Fill(color.RGBA{15, 25, 15, 255})

	session := g.active()
	if session == nil {
		ebitenutil.DebugPrint(screen, "No sessions available. Press ESC to go to session select.")
		return
	}
	if session.state == nil {
		ebitenutil.DebugPrint(screen, "Loading...")
		return
	}

	g.drawSessionStats(screen)
	drawBoard(screen, session.state, session.anim, time.Now())
	drawHUD(screen, session.state, session.lastEvent)

	ebitenutil.DebugPrintAt(screen, "Left: select | Right: plan, again to move | E: End turn | R: Reset | N: New | 1-9: Switch | ESC: Menu", 10, screenHeight-20)
}

// drawSessionStats draws one header line per session
func (g *Game) drawSessionStats(screen *ebiten.Image) {
	for idx, session := range g.sessions {
		if session.state == nil {
			continue
		}
		y := 5 + idx*15

		marker := "   "
		if idx == g.activeSession {
			marker = ">>>"
		}
		conn := "POLL"
		if session.wsConn != nil {
			conn = "WS"
		}

		info := fmt.Sprintf("%s [%d] %s [%s] %s turn:%d %s", marker, idx+1, session.sessionID, conn,
			session.state.ConfigName, session.state.Turn, session.state.Mode)
		if session.state.Victory {
			info += " VICTORY!"
		}
		ebitenutil.DebugPrintAt(screen, info, 20, y)
	}
}

// Layout returns the game screen size
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	baseURL := os.Getenv("GRIDBALL_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	// Accept session IDs as arguments
	game := NewGame(NewClient(baseURL), os.Args[1:])

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Gridball - Desktop Client")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
