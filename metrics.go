package main

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "campusmap_http_requests_total",
	Help: "Number of HTTP requests served",
}, []string{"method", "code"})

var likeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "campusmap_like_toggles_total",
	Help: "Number of like toggles",
}, []string{"kind", "liked"})

var postsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "campusmap_posts_created_total",
	Help: "Number of comments and replies created",
}, []string{"kind"})

var postsBlocked = promauto.NewCounter(prometheus.CounterOpts{
	Name: "campusmap_posts_blocked_total",
	Help: "Number of posts rejected by the spam guard",
})

var logins = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "campusmap_logins_total",
	Help: "Number of login attempts",
}, []string{"result"})

var verificationCodes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "campusmap_verification_codes_total",
	Help: "Number of email verification codes by outcome",
}, []string{"result"})
