package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/luiz-simples/redix/internal/client"
	"github.com/luiz-simples/redix/internal/config"
	"github.com/luiz-simples/redix/internal/domain"
	"github.com/luiz-simples/redix/internal/transaction"
)

type (
	// driver runs one benchmark operation against key with one client library.
	driver interface {
		Run(ctx context.Context, op, key, value string, batch int) error
		Close() error
	}

	redixDriver struct {
		client *client.Client
	}

	goRedisDriver struct {
		client *redis.Client
	}
)

func newDriver(name, address string, protocol int) (driver, error) {
	switch name {
	case "redix":
		cfg := config.Default()
		cfg.Endpoints = []string{address}
		cfg.Protocol = protocol

		redix, err := client.New(cfg)
		if err != nil {
			return nil, err
		}
		return &redixDriver{client: redix}, nil

	case "goredis":
		return &goRedisDriver{client: redis.NewClient(&redis.Options{
			Addr:     address,
			Protocol: protocol,
		})}, nil
	}

	return nil, fmt.Errorf("unknown client %q (expected redix or goredis)", name)
}

func (driver *redixDriver) Run(ctx context.Context, op, key, value string, batch int) error {
	switch op {
	case "SET":
		_, err := driver.client.Do(ctx, "SET", key, value)
		return err
	case "GET":
		_, err := driver.client.Do(ctx, "GET", key)
		return err
	case "INCR":
		_, err := driver.client.Do(ctx, "INCR", key+":counter")
		return err
	case "MGET":
		_, err := driver.client.Do(ctx, "MGET", batchKeys(key, batch))
		return err
	case "PIPELINE":
		cmds := make([]domain.Command, 0, batch)
		for _, batchKey := range batchKeys(key, batch) {
			cmd, err := driver.client.Command("SET", batchKey, value)
			if err != nil {
				return err
			}
			cmds = append(cmds, cmd)
		}
		_, err := driver.client.Pipeline(ctx, cmds...)
		return err
	case "MULTI":
		_, err := driver.client.MultiExec(ctx, func(ctx context.Context, tx *transaction.MultiExec) error {
			for _, batchKey := range batchKeys(key, batch) {
				cmd, err := driver.client.Command("SET", batchKey, value)
				if err != nil {
					return err
				}
				if _, err := tx.ExecuteCommand(ctx, cmd); err != nil {
					return err
				}
			}
			return nil
		})
		return err
	}

	return fmt.Errorf("unknown operation %s", op)
}

func (driver *redixDriver) Close() error {
	return driver.client.Close()
}

func (driver *goRedisDriver) Run(ctx context.Context, op, key, value string, batch int) error {
	switch op {
	case "SET":
		return driver.client.Set(ctx, key, value, 0).Err()
	case "GET":
		return driver.client.Get(ctx, key).Err()
	case "INCR":
		return driver.client.Incr(ctx, key+":counter").Err()
	case "MGET":
		return driver.client.MGet(ctx, batchKeys(key, batch)...).Err()
	case "PIPELINE":
		_, err := driver.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, batchKey := range batchKeys(key, batch) {
				pipe.Set(ctx, batchKey, value, 0)
			}
			return nil
		})
		return err
	case "MULTI":
		_, err := driver.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, batchKey := range batchKeys(key, batch) {
				pipe.Set(ctx, batchKey, value, 0)
			}
			return nil
		})
		return err
	}

	return fmt.Errorf("unknown operation %s", op)
}

func (driver *goRedisDriver) Close() error {
	return driver.client.Close()
}

// batchKeys shares a hash tag so batches stay in one cluster slot.
func batchKeys(key string, batch int) []string {
	keys := make([]string, batch)
	for index := range keys {
		keys[index] = fmt.Sprintf("{%s}:%d", key, index)
	}
	return keys
}
