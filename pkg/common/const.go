package common

const (
	KEY_LAST_SEND_SIGNAL_BUY = "last_send_signal_buy:%s:%s:%s"
)

const (
	KEY_LOG_HOOK_SEND_ALERT = "send_alert"
)

const (
	SideBuy  = "BUY"
	SideSell = "SELL"
)
