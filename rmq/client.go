package rmq

import (
	"emfdscore.com/emfd/logger"
	"fmt"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog"
	"github.com/streadway/amqp"
)

type Config struct {
	Host               string `envconfig:"MDL_COMN_RMQ_HOST" required:"true"`
	Port               string `envconfig:"MDL_COMN_RMQ_PORT" required:"true"`
	Username           string `envconfig:"MDL_COMN_RMQ_USERNAME" required:"true"`
	Password           string `envconfig:"MDL_COMN_RMQ_PASSWORD" required:"true"`
	Exchange           string `envconfig:"MDL_COMN_RMQ_DEFAULT_EXCHANGE" default:"emfd-default-exchange"`
	Prefetch           int    `envconfig:"EMFD_MQ_MAX_PARALLEL_REQUESTS" default:"5"`
	TaskQueue          string `envconfig:"MDL_COMN_EMFD_TASK_QUEUE" required:"true"`
	SequencerTaskQueue string `envconfig:"MDL_COMN_SEQUENCER_TASK_QUEUE" required:"true"`
}

func (cfg Config) URL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s", cfg.Username, cfg.Password, cfg.Host, cfg.Port)
}

// Client consumes the scoring task queue on one connection and publishes to
// the sequencer on another, so a blocked publisher never stalls consumption.
type Client struct {
	Deliveries     <-chan amqp.Delivery
	ReqChanErrors  <-chan *amqp.Error
	RespChanErrors <-chan *amqp.Error
	config         Config
	reqConn        *amqp.Connection
	respConn       *amqp.Connection
	respChannel    *amqp.Channel
	log            zerolog.Logger
}

func NewClient() (*Client, error) {
	rmqLogger := logger.NewLogger("RMQ client")
	var config Config
	if err := envconfig.Process("", &config); err != nil {
		rmqLogger.Error().Err(err).Msg("Could not read env config")
		return nil, err
	}

	respConn, respChannel, err := dial(config.URL())
	if err != nil {
		return nil, fmt.Errorf("publisher connection: %w", err)
	}
	reqConn, reqChannel, err := dial(config.URL())
	if err != nil {
		_ = respConn.Close()
		return nil, fmt.Errorf("consumer connection: %w", err)
	}
	deliveries, err := consume(reqChannel, config)
	if err != nil {
		_ = respConn.Close()
		_ = reqConn.Close()
		return nil, err
	}
	rmqLogger.Info().Str("queue", config.TaskQueue).Int("prefetch", config.Prefetch).Msg("Consuming tasks")

	return &Client{
		Deliveries:     deliveries,
		ReqChanErrors:  reqChannel.NotifyClose(make(chan *amqp.Error, 1)),
		RespChanErrors: respChannel.NotifyClose(make(chan *amqp.Error, 1)),
		config:         config,
		reqConn:        reqConn,
		respConn:       respConn,
		respChannel:    respChannel,
		log:            rmqLogger,
	}, nil
}

func consume(ch *amqp.Channel, config Config) (<-chan amqp.Delivery, error) {
	q, err := ch.QueueDeclarePassive(config.TaskQueue, true, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("declare %s: %w", config.TaskQueue, err)
	}
	if err := ch.QueueBind(q.Name, q.Name, config.Exchange, false, nil); err != nil {
		return nil, fmt.Errorf("bind %s: %w", q.Name, err)
	}
	if err := ch.Qos(config.Prefetch, 0, false); err != nil {
		return nil, fmt.Errorf("qos: %w", err)
	}
	deliveries, err := ch.Consume(q.Name, "", false, false, false, false, nil)
	if err != nil {
		return nil, fmt.Errorf("consume %s: %w", q.Name, err)
	}
	return deliveries, nil
}

func (c *Client) SendMessageToSequencer(msg amqp.Publishing) error {
	c.log.Debug().Str("queue", c.config.SequencerTaskQueue).Msg("Publishing to sequencer")
	return c.respChannel.Publish(c.config.Exchange, c.config.SequencerTaskQueue, false, false, msg)
}

func (c *Client) Close() {
	_ = c.reqConn.Close()
	_ = c.respConn.Close()
}

func dial(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, err
	}
	return conn, ch, nil
}
