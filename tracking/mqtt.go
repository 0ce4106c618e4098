package tracking

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	logInternal "github.com/AlexStarov/inkshield-GoLang-lib/log"
)

// PointSource reports where the camera last saw the brush head.
type PointSource interface {
	Latest() (Point, bool)
}

// MQTTOpts configures an MQTTSource.
type MQTTOpts struct {
	Broker   string // tcp://host:1883
	ClientID string
	Topic    string
	QoS      byte

	// Zero keeps the defaults below.
	KeepAlive      time.Duration
	ConnectTimeout time.Duration
}

const (
	defaultKeepAlive      = 2 * time.Second
	defaultConnectTimeout = 10 * time.Second
)

// position is the payload of a point message. A message without coordinates
// means the head is out of sight.
type position struct {
	X *float64 `json:"x"`
	Y *float64 `json:"y"`
}

// MQTTSource follows head positions published by a camera tracker.
type MQTTSource struct {
	client mqtt.Client
	topic  string

	mu       sync.Mutex
	last     Point
	visible  bool
	received uint64
}

// NewMQTTSource connects to opts.Broker and subscribes to opts.Topic. The
// subscription is renewed on every reconnect.
func NewMQTTSource(opts *MQTTOpts) (*MQTTSource, error) {
	if opts == nil || opts.Broker == "" || opts.Topic == "" {
		return nil, errors.New("tracking: broker and topic are required")
	}
	keepAlive, connectTimeout := opts.KeepAlive, opts.ConnectTimeout
	if keepAlive == 0 {
		keepAlive = defaultKeepAlive
	}
	if connectTimeout == 0 {
		connectTimeout = defaultConnectTimeout
	}

	s := &MQTTSource{topic: opts.Topic}

	co := mqtt.NewClientOptions().AddBroker(opts.Broker).SetClientID(opts.ClientID)
	co.SetKeepAlive(keepAlive)
	co.SetPingTimeout(keepAlive / 2)
	co.SetAutoReconnect(true)
	co.SetOnConnectHandler(func(c mqtt.Client) {
		if token := c.Subscribe(opts.Topic, opts.QoS, s.handle); token.Wait() && token.Error() != nil {
			logInternal.PrintIfErr("tracking: subscribe "+opts.Topic, ptr(token.Error()))
			return
		}
		logInternal.LogMessage(logInternal.INFO, fmt.Sprintf("subscribed to %s on %s", opts.Topic, opts.Broker))
	})
	co.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		s.forget()
		logInternal.PrintIfErr("tracking: connection lost", &err)
	})

	s.client = mqtt.NewClient(co)
	token := s.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return nil, fmt.Errorf("tracking: connect to %s: timed out after %s", opts.Broker, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("tracking: connect to %s: %w", opts.Broker, err)
	}
	return s, nil
}

func ptr(err error) *error { return &err }

func (s *MQTTSource) handle(_ mqtt.Client, msg mqtt.Message) {
	var pos position
	if err := json.Unmarshal(msg.Payload(), &pos); err != nil {
		logInternal.Debugf("tracking: bad payload on %s: %v", msg.Topic(), err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.received++
	if pos.X == nil || pos.Y == nil {
		s.visible = false
		return
	}
	s.last = Point{*pos.X, *pos.Y}
	s.visible = true
}

func (s *MQTTSource) forget() {
	s.mu.Lock()
	s.visible = false
	s.mu.Unlock()
}

// Latest returns the last position seen. ok is false while the head is out
// of sight or no position has arrived yet.
func (s *MQTTSource) Latest() (Point, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last, s.visible
}

// Received returns the number of point messages handled.
func (s *MQTTSource) Received() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.received
}

// Close unsubscribes and disconnects.
func (s *MQTTSource) Close() {
	if s.client == nil {
		return
	}
	if s.client.IsConnectionOpen() {
		s.client.Unsubscribe(s.topic).WaitTimeout(time.Second)
	}
	s.client.Disconnect(250)
}
