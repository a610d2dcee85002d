// Package metrics defines all custom Prometheus metrics for the file
// sharing API. It is the single source of truth for metric names, labels,
// and help strings. Metrics register themselves with the default registry
// via promauto at package init.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "fileshare"

// SignupsTotal counts successful signups by role.
var SignupsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "signups_total",
		Help:      "Total number of successful signups, by role.",
	},
	[]string{"role"},
)

// UploadsTotal counts successfully stored uploads.
// Label:
//   - content_type: the MIME type of the stored file
var UploadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_total",
		Help:      "Total number of files uploaded, by content type.",
	},
	[]string{"content_type"},
)

// UploadsRejectedTotal counts uploads rejected before any storage write.
// Label:
//   - reason: short description of the rejection (e.g. "invalid_file_type")
var UploadsRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "uploads_rejected_total",
		Help:      "Total number of uploads rejected before storage, by reason.",
	},
	[]string{"reason"},
)

// DownloadLinksIssuedTotal counts minted download links.
var DownloadLinksIssuedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "download_links_issued_total",
		Help:      "Total number of download links issued.",
	},
)

// DownloadsTotal counts link resolution attempts.
// Label:
//   - result: "ok", "invalid", "expired", or "consumed"
var DownloadsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "downloads_total",
		Help:      "Total number of download link resolutions, by result.",
	},
	[]string{"result"},
)

// MailQueueDepth tracks the number of messages pending in each mail
// dispatcher worker channel.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MailQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "mail_queue_depth",
		Help:      "Current number of messages pending in each mail dispatcher worker channel.",
	},
	[]string{"worker_id"},
)
