package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	ord "ordersvc/internal/order"
)

func createOrderHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ord.CreateOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
			return
		}
		o, err := svc.Create(c.Request.Context(), req)
		if err != nil {
			// one generic shape for every internal cause
			c.JSON(http.StatusBadRequest, gin.H{"error": ord.ErrCreateFailed.Error()})
			return
		}
		c.JSON(http.StatusCreated, o)
	}
}

func listOrdersHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := ord.ListQuery{Page: 1, Limit: 10}
		if v, err := strconv.Atoi(c.DefaultQuery("page", "1")); err == nil && v > 0 {
			q.Page = v
		}
		if v, err := strconv.Atoi(c.DefaultQuery("limit", "10")); err == nil && v > 0 {
			q.Limit = v
		}
		if s := c.Query("status"); s != "" {
			st := ord.Status(s)
			if !ord.ValidStatus(st) {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
				return
			}
			q.Status = st
		}
		page, err := svc.List(c.Request.Context(), q)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

func getOrderHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, ord.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func updateOrderStatusHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req ord.ChangeStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil || !ord.ValidStatus(req.Status) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown status"})
			return
		}
		o, err := svc.ChangeStatus(c.Request.Context(), c.Param("id"), req.Status)
		if err != nil {
			switch {
			case errors.Is(err, ord.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			case errors.Is(err, ord.ErrInvalidTransition):
				c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": "status change failed"})
			}
			return
		}
		c.JSON(http.StatusOK, o)
	}
}

func createPaymentSessionHandler(svc *ord.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		o, err := svc.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, ord.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
			return
		}
		session, err := svc.CreatePaymentSession(c.Request.Context(), o)
		if err != nil {
			c.JSON(http.StatusBadGateway, gin.H{"error": "payment session failed"})
			return
		}
		c.JSON(http.StatusCreated, session)
	}
}
