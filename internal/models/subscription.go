package models

import "time"

// Subscription records that Subscriber follows Channel. Both are users.
type Subscription struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	SubscriberID uint      `gorm:"not null;uniqueIndex:idx_subscriber_channel,priority:1" json:"subscriberId"`
	ChannelID    uint      `gorm:"not null;uniqueIndex:idx_subscriber_channel,priority:2;index" json:"channelId"`
	CreatedAt    time.Time `gorm:"index" json:"createdAt"`
}

// SubscriptionToggleResult reports the state after a subscription toggle.
type SubscriptionToggleResult struct {
	Subscribed   bool          `json:"subscribed"`
	Subscription *Subscription `json:"subscription"`
}

// SubscriberEntry is one row of a channel's subscriber listing.
type SubscriberEntry struct {
	ID           uint        `json:"id"`
	Subscriber   UserSummary `json:"subscriber"`
	SubscribedAt time.Time   `json:"subscribedAt"`
}

// SubscriberList is a page of subscribers plus the channel's total.
type SubscriberList struct {
	Subscribers      []SubscriberEntry `json:"subscribers"`
	SubscribersCount int64             `json:"subscribersCount"`
	Page             int               `json:"page"`
	Limit            int               `json:"limit"`
}

// ChannelEntry is one row of a user's subscriptions listing.
type ChannelEntry struct {
	ID           uint        `json:"id"`
	Channel      UserSummary `json:"channel"`
	SubscribedAt time.Time   `json:"subscribedAt"`
}

// SubscribedChannelList is a page of subscribed channels plus the total.
type SubscribedChannelList struct {
	Channels      []ChannelEntry `json:"channels"`
	ChannelsCount int64          `json:"channelsCount"`
	Page          int            `json:"page"`
	Limit         int            `json:"limit"`
}
