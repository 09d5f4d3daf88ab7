package events

import (
	"time"

	"github.com/AlotfyDev/ArchiNote/domain/core/valueobjects"
)

// Event type names as published on the bus
const (
	TypeNodeAdded   = "graph.node_added"
	TypeNodeRemoved = "graph.node_removed"
	TypeEdgeAdded   = "graph.edge_added"
	TypeEdgeRemoved = "graph.edge_removed"
	TypePathAdded   = "graph.path_added"
	TypePathRemoved = "graph.path_removed"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

func newBase(aggregateID, eventType string, timestamp time.Time) BaseEvent {
	return BaseEvent{
		AggregateID: aggregateID,
		EventType:   eventType,
		Timestamp:   timestamp,
		Version:     1,
	}
}

// Node Events

// NodeAdded is raised when a node joins the graph
type NodeAdded struct {
	BaseEvent
	NodeID   string                `json:"node_id"`
	NodeType valueobjects.NodeType `json:"node_type"`
}

// NewNodeAdded creates a NodeAdded event
func NewNodeAdded(nodeID string, nodeType valueobjects.NodeType, timestamp time.Time) NodeAdded {
	return NodeAdded{
		BaseEvent: newBase(nodeID, TypeNodeAdded, timestamp),
		NodeID:    nodeID,
		NodeType:  nodeType,
	}
}

// NodeRemoved is raised after a node and everything referencing it is removed
type NodeRemoved struct {
	BaseEvent
	NodeID         string   `json:"node_id"`
	RemovedEdgeIDs []string `json:"removed_edge_ids,omitempty"`
	RemovedPathIDs []string `json:"removed_path_ids,omitempty"`
}

// NewNodeRemoved creates a NodeRemoved event
func NewNodeRemoved(nodeID string, edgeIDs, pathIDs []string, timestamp time.Time) NodeRemoved {
	return NodeRemoved{
		BaseEvent:      newBase(nodeID, TypeNodeRemoved, timestamp),
		NodeID:         nodeID,
		RemovedEdgeIDs: edgeIDs,
		RemovedPathIDs: pathIDs,
	}
}

// Edge Events

// EdgeAdded is raised when two nodes are connected
type EdgeAdded struct {
	BaseEvent
	EdgeID       string                        `json:"edge_id"`
	SourceID     string                        `json:"source_id"`
	TargetID     string                        `json:"target_id"`
	Relationship valueobjects.RelationshipType `json:"relationship"`
	Strength     valueobjects.Strength         `json:"strength"`
}

// NewEdgeAdded creates an EdgeAdded event
func NewEdgeAdded(edgeID, sourceID, targetID string, rel valueobjects.RelationshipType, strength valueobjects.Strength, timestamp time.Time) EdgeAdded {
	return EdgeAdded{
		BaseEvent:    newBase(edgeID, TypeEdgeAdded, timestamp),
		EdgeID:       edgeID,
		SourceID:     sourceID,
		TargetID:     targetID,
		Relationship: rel,
		Strength:     strength,
	}
}

// EdgeRemoved is raised when an edge is removed
type EdgeRemoved struct {
	BaseEvent
	EdgeID         string   `json:"edge_id"`
	SourceID       string   `json:"source_id"`
	TargetID       string   `json:"target_id"`
	RemovedPathIDs []string `json:"removed_path_ids,omitempty"`
}

// NewEdgeRemoved creates an EdgeRemoved event
func NewEdgeRemoved(edgeID, sourceID, targetID string, pathIDs []string, timestamp time.Time) EdgeRemoved {
	return EdgeRemoved{
		BaseEvent:      newBase(edgeID, TypeEdgeRemoved, timestamp),
		EdgeID:         edgeID,
		SourceID:       sourceID,
		TargetID:       targetID,
		RemovedPathIDs: pathIDs,
	}
}

// Path Events

// PathAdded is raised when a validated path is registered
type PathAdded struct {
	BaseEvent
	PathID   string                `json:"path_id"`
	PathType valueobjects.PathType `json:"path_type"`
	EdgeIDs  []string              `json:"edge_ids"`
}

// NewPathAdded creates a PathAdded event
func NewPathAdded(pathID string, pathType valueobjects.PathType, edgeIDs []string, timestamp time.Time) PathAdded {
	return PathAdded{
		BaseEvent: newBase(pathID, TypePathAdded, timestamp),
		PathID:    pathID,
		PathType:  pathType,
		EdgeIDs:   edgeIDs,
	}
}

// PathRemoved is raised when a path is removed directly or by cascade
type PathRemoved struct {
	BaseEvent
	PathID string `json:"path_id"`
}

// NewPathRemoved creates a PathRemoved event
func NewPathRemoved(pathID string, timestamp time.Time) PathRemoved {
	return PathRemoved{
		BaseEvent: newBase(pathID, TypePathRemoved, timestamp),
		PathID:    pathID,
	}
}
