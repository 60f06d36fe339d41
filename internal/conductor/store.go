// Package conductor implements the node management service.
//
// @design DS-0201
package conductor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v3"

	"github.com/yndnr/metalmesh/internal/core/domain"
	"github.com/yndnr/metalmesh/internal/telemetry/logger"
)

// nodeKeyPrefix namespaces node records inside the shared DB.
const nodeKeyPrefix = "node/"

// NodeStore persists the node inventory in a Badger database.
type NodeStore struct {
	db  *badger.DB
	log logger.Logger
}

// NewNodeStore opens (or creates) the node database under dir.
func NewNodeStore(dir string, log logger.Logger) (*NodeStore, error) {
	if dir == "" {
		return nil, fmt.Errorf("node store: dir is required")
	}
	if log == nil {
		log = logger.Default()
	}

	opts := badger.DefaultOptions(dir)
	opts.Logger = &badgerLogger{log: log}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("node store: open db: %w", err)
	}

	log.Info("node store opened", "dir", dir)

	return &NodeStore{db: db, log: log}, nil
}

func nodeKey(uuid string) []byte {
	return []byte(nodeKeyPrefix + uuid)
}

// Save writes a node record, validating it first.
func (s *NodeStore) Save(ctx context.Context, node *domain.Node) error {
	if err := node.Validate(); err != nil {
		return err
	}

	value, err := json.Marshal(node)
	if err != nil {
		return fmt.Errorf("node store: marshal node %s: %w", node.UUID, err)
	}

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(nodeKey(node.UUID), value)
	})
}

// Get retrieves a node by UUID.
func (s *NodeStore) Get(ctx context.Context, uuid string) (*domain.Node, error) {
	var node domain.Node

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(nodeKey(uuid))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.NewNodeNotFound(uuid)
			}
			return err
		}

		return item.Value(func(value []byte) error {
			return json.Unmarshal(value, &node)
		})
	})
	if err != nil {
		return nil, err
	}

	return &node, nil
}

// GetByName retrieves a node by its unique name.
func (s *NodeStore) GetByName(ctx context.Context, name string) (*domain.Node, error) {
	nodes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, node := range nodes {
		if node.Name == name {
			return node, nil
		}
	}
	return nil, domain.NewNodeNotFound(name)
}

// List returns all nodes sorted by name.
func (s *NodeStore) List(ctx context.Context) ([]*domain.Node, error) {
	var nodes []*domain.Node

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(nodeKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			var node domain.Node
			err := it.Item().Value(func(value []byte) error {
				return json.Unmarshal(value, &node)
			})
			if err != nil {
				return err
			}
			nodes = append(nodes, &node)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].Name < nodes[j].Name
	})

	return nodes, nil
}

// Delete removes a node record. Missing nodes report NodeNotFound.
func (s *NodeStore) Delete(ctx context.Context, uuid string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(nodeKey(uuid)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return domain.NewNodeNotFound(uuid)
			}
			return err
		}
		return txn.Delete(nodeKey(uuid))
	})
}

// Close shuts the database down.
func (s *NodeStore) Close() error {
	s.log.Info("node store closing")
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("node store: close db: %w", err)
	}
	return nil
}

// badgerLogger adapts the telemetry logger to Badger's Logger interface.
type badgerLogger struct {
	log logger.Logger
}

func (l *badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l *badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}
