package dialogue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/lazzaau/witi-watchdog/internal/domain/watchdog"
	"github.com/lazzaau/witi-watchdog/internal/logger"
)

const (
	// TopicStatus is where the status payload is published.
	TopicStatus = "WitiAlarm"
	// topicSay is where local announcements are published for the voice
	// assistant to speak.
	topicSay = "hermes/tts/say"

	// connectTimeout bounds the initial broker connection.
	connectTimeout = 10 * time.Second
	// qosAtLeastOnce is used for intents and announcements.
	qosAtLeastOnce = 1
)

// Handler consumes decoded voice intents.
type Handler interface {
	HandleIntent(ctx context.Context, intent watchdog.Intent)
}

// ArmedSource reports the current alarm state, used to resolve the
// switch-state intent into arm or disarm.
type ArmedSource interface {
	Armed() bool
}

// Client is the MQTT adapter: it receives voice intents, speaks local
// announcements, and publishes the status payload.
type Client struct {
	mqtt    mqtt.Client
	handler Handler
	armed   ArmedSource

	// ctx is the lifetime context handed to intent handlers; MQTT
	// callbacks do not carry one.
	ctx context.Context //nolint:containedctx // Paho callbacks have no context parameter.
}

// sayMessage is the announcement wire format.
type sayMessage struct {
	Text string `json:"text"`
}

// New builds a client for the given broker. Connect must be called before use.
func New(brokerURL, clientID string, handler Handler, armed ArmedSource) *Client {
	c := &Client{
		handler: handler,
		armed:   armed,
	}

	opts := mqtt.NewClientOptions().
		AddBroker(brokerURL).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetOnConnectHandler(c.subscribe)

	c.mqtt = mqtt.NewClient(opts)

	return c
}

// Connect establishes the broker connection and subscribes to the intent
// topics. ctx becomes the lifetime context for intent handling.
func (c *Client) Connect(ctx context.Context) error {
	c.ctx = ctx

	token := c.mqtt.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("connect to broker: timeout after %s", connectTimeout)
	}

	if err := token.Error(); err != nil {
		return fmt.Errorf("connect to broker: %w", err)
	}

	return nil
}

// Close disconnects from the broker.
func (c *Client) Close() {
	c.mqtt.Disconnect(250) //nolint:mnd // Quiesce window in milliseconds, per paho convention.
}

// subscribe registers the intent topics. Runs on every (re)connect so
// subscriptions survive broker restarts.
func (c *Client) subscribe(_ mqtt.Client) {
	topics := map[string]byte{
		TopicSwitchAlarmState:       qosAtLeastOnce,
		TopicTurnAlarmOn:            qosAtLeastOnce,
		TopicSpellPinCode:           qosAtLeastOnce,
		TopicAnswerYesOrNo:          qosAtLeastOnce,
		TopicToggleSetting:          qosAtLeastOnce,
		TopicChangeNotificationText: qosAtLeastOnce,
	}

	token := c.mqtt.SubscribeMultiple(topics, c.onIntent)
	token.Wait()

	if err := token.Error(); err != nil {
		logger.ErrorKV(c.ctx, "Intent subscription failed", "error", err)

		return
	}

	logger.InfoKV(c.ctx, "Subscribed to voice intents", "topics", len(topics))
}

// onIntent decodes an incoming intent message and hands it to the handler.
func (c *Client) onIntent(_ mqtt.Client, msg mqtt.Message) {
	intent, err := decodeIntent(msg.Topic(), msg.Payload(), c.armed.Armed())
	if err != nil {
		logger.WarnKV(c.ctx, "Dropping unusable intent", "topic", msg.Topic(), "error", err)

		return
	}

	c.handler.HandleIntent(c.ctx, intent)
}

// Say publishes a local announcement for the voice assistant to speak.
// Best-effort: failures are logged, never returned.
func (c *Client) Say(ctx context.Context, text string) {
	payload, err := json.Marshal(sayMessage{Text: text})
	if err != nil {
		logger.WarnKV(ctx, "Encode announcement failed", "error", err)

		return
	}

	token := c.mqtt.Publish(topicSay, qosAtLeastOnce, false, payload)
	go logPublishOutcome(ctx, token, topicSay)
}

// PublishStatus publishes the status payload, retained so late subscribers
// see the current state. The monitor only hands over payloads that differ
// from the previously published one. Best-effort.
func (c *Client) PublishStatus(ctx context.Context, status watchdog.StatusPayload) {
	payload, err := json.Marshal(status)
	if err != nil {
		logger.WarnKV(ctx, "Encode status failed", "error", err)

		return
	}

	token := c.mqtt.Publish(TopicStatus, qosAtLeastOnce, true, payload)
	go logPublishOutcome(ctx, token, TopicStatus)
}

// logPublishOutcome waits for the broker acknowledgment off the hot path
// and logs failures.
func logPublishOutcome(ctx context.Context, token mqtt.Token, topic string) {
	token.Wait()

	if err := token.Error(); err != nil {
		logger.WarnKV(ctx, "Publish failed", "topic", topic, "error", err)
	}
}
