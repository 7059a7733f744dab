package bucket

import (
	"github.com/kailas-cloud/bloomprobe/internal/domain/bloom"
	"github.com/kailas-cloud/bloomprobe/internal/domain/order"
)

type orderDTO struct {
	UserID     int64 `json:"user_id"`
	OrderID    int64 `json:"order_id"`
	UnixTimeMs int64 `json:"unix_time_ms"`
}

type bucketDTO struct {
	Serial uint64     `json:"serial"`
	Orders []orderDTO `json:"orders"`
}

func toDTO(b order.Bucket) bucketDTO {
	orders := make([]orderDTO, len(b.Orders()))
	for i, o := range b.Orders() {
		orders[i] = orderDTO{UserID: o.UserID(), OrderID: o.OrderID(), UnixTimeMs: o.UnixTimeMs()}
	}
	return bucketDTO{Serial: uint64(b.Serial()), Orders: orders}
}

func fromDTO(d bucketDTO) order.Bucket {
	orders := make([]order.Order, len(d.Orders))
	for i, o := range d.Orders {
		orders[i] = order.New(o.UserID, o.OrderID, o.UnixTimeMs)
	}
	return order.NewBucket(bloom.Serial(d.Serial), orders)
}
