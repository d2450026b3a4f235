package messaging

import (
	"fmt"
	"strings"
	"time"
)

type RabbitMQConfig struct {
	Enabled           bool          `yaml:"enabled"`
	Host              string        `yaml:"host"`
	Port              int           `yaml:"port"`
	Username          string        `yaml:"username"`
	Password          string        `yaml:"password"`
	VHost             string        `yaml:"vhost"`
	Exchange          string        `yaml:"exchange"`
	RetryCount        int           `yaml:"retry_count"`
	RetryDelay        time.Duration `yaml:"retry_delay"`
	ConnectionTimeout time.Duration `yaml:"connection_timeout"`
}

func DefaultRabbitMQConfig() RabbitMQConfig {
	return RabbitMQConfig{
		Enabled:           true,
		Host:              "localhost",
		Port:              5672,
		Username:          "guest",
		Password:          "guest",
		VHost:             "/",
		Exchange:          "storefront.events",
		RetryCount:        3,
		RetryDelay:        time.Second * 5,
		ConnectionTimeout: time.Second * 30,
	}
}

func (c *RabbitMQConfig) ConnectionURL() string {
	vhost := c.VHost
	if vhost != "/" && !strings.HasPrefix(vhost, "/") {
		vhost = "/" + vhost
	}
	return fmt.Sprintf("amqp://%s:%s@%s:%d%s",
		c.Username, c.Password, c.Host, c.Port, vhost)
}
