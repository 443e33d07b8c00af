package stream

import (
	"sync"

	"go.uber.org/zap"
)

// 实时推送中心：按主题（section:<id> / room:<id>）维护订阅者集合，
// 存储每次变更后将最新实体 fan-out 给订阅者
//
// 投递语义：至少一次、不同 key 之间无顺序保证；订阅者跟不上时丢弃
// 最旧事件并告警（客户端始终能从下一次快照恢复）

// Event 推送给订阅者的事件
type Event struct {
	Kind    string      `json:"kind"` // snapshot | upsert | delete
	Payload interface{} `json:"payload"`
}

// Subscriber 单个订阅者
type Subscriber struct {
	topic string
	ch    chan Event
}

// C 事件通道，Unsubscribe 后关闭
func (s *Subscriber) C() <-chan Event { return s.ch }

// Hub 主题订阅中心
type Hub struct {
	mu     sync.RWMutex
	subs   map[string]map[*Subscriber]struct{}
	buffer int
	logger *zap.Logger
}

// NewHub 创建 Hub
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		subs:   make(map[string]map[*Subscriber]struct{}),
		buffer: 32,
		logger: logger,
	}
}

// Subscribe 订阅主题
func (h *Hub) Subscribe(topic string) *Subscriber {
	sub := &Subscriber{
		topic: topic,
		ch:    make(chan Event, h.buffer),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[topic] == nil {
		h.subs[topic] = make(map[*Subscriber]struct{})
	}
	h.subs[topic][sub] = struct{}{}

	return sub
}

// Unsubscribe 取消订阅并关闭事件通道；之后不再有任何推送
func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	set, ok := h.subs[sub.topic]
	if !ok {
		return
	}
	if _, ok := set[sub]; !ok {
		return
	}
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.topic)
	}
	close(sub.ch)
}

// Publish 向主题的所有订阅者投递事件
func (h *Hub) Publish(topic string, ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for sub := range h.subs[topic] {
		select {
		case sub.ch <- ev:
		default:
			// 慢订阅者：丢最旧的一条腾位置，保证新状态总能送达
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- ev:
			default:
			}
			h.logger.Warn("订阅者消费过慢，已丢弃旧事件",
				zap.String("topic", topic),
				zap.String("kind", ev.Kind),
			)
		}
	}
}

// SubscriberCount 主题当前订阅者数量（监控与测试用）
func (h *Hub) SubscriberCount(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[topic])
}
