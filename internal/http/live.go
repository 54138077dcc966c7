package http

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mrlokans/sunflower/internal/sessions"
	"github.com/mrlokans/sunflower/internal/viewmodels"
)

const (
	writeWait = 10 * time.Second

	actionAddToGarden   = "add_to_garden"
	actionSetGrowZone   = "set_grow_zone"
	actionClearGrowZone = "clear_grow_zone"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// LiveAction is a message sent by a WebSocket client.
type LiveAction struct {
	Action   string `json:"action"`
	GrowZone *int   `json:"growZone,omitempty"`
}

// LiveController pushes view-model streams to WebSocket clients. Every
// database change observed by a stream is sent as a new snapshot.
type LiveController struct {
	plants   PlantStore
	gardens  GardenStore
	keys     viewmodels.KeyChecker
	sessions *sessions.SessionManager
}

func NewLiveController(plantStore PlantStore, gardens GardenStore, keys viewmodels.KeyChecker, sm *sessions.SessionManager) *LiveController {
	return &LiveController{plants: plantStore, gardens: gardens, keys: keys, sessions: sm}
}

// Garden handles GET /ws/garden
func (lc *LiveController) Garden(c *gin.Context) {
	client, ok := openLiveClient(c, "garden")
	if !ok {
		return
	}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer client.close(cancel)
	go client.readLoop(ctx, cancel, nil)

	items := viewmodels.NewGardenPlantingListViewModel(lc.gardens).Items(ctx)
	for {
		select {
		case v, ok := <-items.Values():
			if !ok {
				client.fail(items.Err())
				return
			}
			if err := client.send(gin.H{"type": "garden", "items": v}); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// Plants handles GET /ws/plants
// The grow zone filter starts from the session and can be changed with
// set_grow_zone and clear_grow_zone actions for the life of the connection.
func (lc *LiveController) Plants(c *gin.Context) {
	zone := viewmodels.NewPlantListViewModel(savedState(lc.sessions, c, plantListScreen), lc.plants).GrowZoneNumber()
	vm := viewmodels.NewPlantListViewModel(viewmodels.PlantListState(zone), lc.plants)

	client, ok := openLiveClient(c, "plants")
	if !ok {
		return
	}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer client.close(cancel)

	go client.readLoop(ctx, cancel, func(a LiveAction) {
		switch a.Action {
		case actionSetGrowZone:
			next := viewmodels.DefaultGrowZone
			if a.GrowZone != nil {
				next = *a.GrowZone
			}
			vm.SetGrowZoneNumber(next)
		case actionClearGrowZone:
			vm.ClearGrowZoneNumber()
		default:
			client.sendError("unknown action: " + a.Action)
		}
	})

	list := vm.Plants(ctx)
	for {
		select {
		case v, ok := <-list.Values():
			if !ok {
				client.fail(list.Err())
				return
			}
			if err := client.send(gin.H{"type": "plants", "plants": v, "filter": filterOf(vm)}); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// PlantDetail handles GET /ws/plants/:id
// Streams the plant and whether it is planted, and accepts add_to_garden.
func (lc *LiveController) PlantDetail(c *gin.Context) {
	plant, ok := loadPlant(c, lc.plants)
	if !ok {
		return
	}

	vm, err := viewmodels.NewPlantDetailViewModel(viewmodels.PlantDetailState(plant.ID), lc.plants, lc.gardens, lc.keys)
	if err != nil {
		respondBadRequest(c, err.Error())
		return
	}
	defer vm.Close()

	client, ok := openLiveClient(c, "plants/"+plant.ID)
	if !ok {
		return
	}
	ctx, cancel := context.WithCancel(c.Request.Context())
	defer client.close(cancel)

	go client.readLoop(ctx, cancel, func(a LiveAction) {
		if a.Action != actionAddToGarden {
			client.sendError("unknown action: " + a.Action)
			return
		}
		go func() {
			result, ok := <-vm.AddPlantToGarden()
			if !ok {
				return
			}
			if result.Err != nil {
				client.sendError("could not add plant to garden: " + result.Err.Error())
				return
			}
			_ = client.send(gin.H{"type": "added", "planting": result.Planting})
		}()
	})

	if err := client.send(gin.H{"type": "config", "hasValidUnsplashKey": vm.HasValidUnsplashKey()}); err != nil {
		return
	}

	plantStream := vm.Plant(ctx)
	plantedStream := vm.IsPlanted(ctx)
	for {
		select {
		case v, ok := <-plantStream.Values():
			if !ok {
				client.fail(plantStream.Err())
				return
			}
			if err := client.send(gin.H{"type": "plant", "plant": v}); err != nil {
				return
			}
		case v, ok := <-plantedStream.Values():
			if !ok {
				client.fail(plantedStream.Err())
				return
			}
			if err := client.send(gin.H{"type": "planted", "isPlanted": v}); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}

// liveClient serialises writes to one WebSocket connection.
type liveClient struct {
	id       string
	endpoint string
	conn     *websocket.Conn
	mu       sync.Mutex
}

// openLiveClient upgrades the request. On failure the upgrader has already
// answered with an HTTP error.
func openLiveClient(c *gin.Context, endpoint string) (*liveClient, bool) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed for %s: %v", c.Request.RemoteAddr, err)
		return nil, false
	}
	client := &liveClient{id: uuid.NewString(), endpoint: endpoint, conn: conn}
	log.Printf("[WS] Client %s connected to %s from %s", client.id, endpoint, c.Request.RemoteAddr)
	return client, true
}

func (lc *liveClient) send(v any) error {
	lc.mu.Lock()
	defer lc.mu.Unlock()

	_ = lc.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := lc.conn.WriteJSON(v); err != nil {
		log.Printf("[WS] Write to client %s failed: %v", lc.id, err)
		return err
	}
	return nil
}

func (lc *liveClient) sendError(message string) {
	_ = lc.send(gin.H{"type": "error", "error": message})
}

// fail reports the error that ended a stream, if any.
func (lc *liveClient) fail(err error) {
	if err == nil {
		return
	}
	log.Printf("[WS] Stream for client %s ended: %v", lc.id, err)
	lc.sendError("stream ended")
}

// readLoop decodes client actions until the connection closes, then cancels
// ctx. A nil handle discards every message.
func (lc *liveClient) readLoop(ctx context.Context, cancel context.CancelFunc, handle func(LiveAction)) {
	defer cancel()
	for {
		_, data, err := lc.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && ctx.Err() == nil {
				log.Printf("[WS] Client %s disconnected unexpectedly: %v", lc.id, err)
			}
			return
		}
		if handle == nil {
			continue
		}

		var action LiveAction
		if err := json.Unmarshal(data, &action); err != nil {
			lc.sendError("invalid message")
			continue
		}
		handle(action)
	}
}

func (lc *liveClient) close(cancel context.CancelFunc) {
	cancel()
	_ = lc.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
	lc.conn.Close()
	log.Printf("[WS] Client %s disconnected from %s", lc.id, lc.endpoint)
}
