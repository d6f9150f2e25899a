// Package server exposes a read-only JSON API over a built gene table.
// It serves the same database the build command writes; nothing here
// mutates it.
package server

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yumyai/ggcluster/logger"
	mydb "github.com/yumyai/ggcluster/pkg/db"
)

// NewRouter wires all API routes onto a gin engine.
func NewRouter(db *sql.DB) *gin.Engine {
	router := gin.Default()

	router.GET("/api/v1/health", HealthCheck)
	router.GET("/api/v1/clusters", NewClusterListHandler(db))
	router.GET("/api/v1/cluster/:cluster_id", NewClusterHandler(db))
	router.GET("/api/v1/adjacency", NewAdjacencyHandler(db))
	router.GET("/api/v1/matrix", NewMatrixHandler(db))
	router.GET("/api/v1/regions", NewRegionsHandler(db))

	return router
}

func HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// NewClusterListHandler builds a gin handler for the cluster list view.
func NewClusterListHandler(db *sql.DB) func(c *gin.Context) {
	return func(c *gin.Context) {
		clusters, err := mydb.ListClusters(db)
		if err != nil {
			logger.Error("list clusters", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"clusters": clusters})
	}
}

// NewClusterHandler builds a gin handler for one cluster and its members.
func NewClusterHandler(db *sql.DB) func(c *gin.Context) {
	return func(c *gin.Context) {
		clusterID := c.Param("cluster_id")
		members, err := mydb.GetClusterMembers(db, clusterID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				c.JSON(http.StatusNotFound, gin.H{"error": "no such cluster"})
				return
			}
			logger.Error("get cluster", zap.String("cluster_id", clusterID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"cluster_id": clusterID,
			"members":    members,
		})
	}
}

// NewAdjacencyHandler builds a gin handler for the stored edge list.
func NewAdjacencyHandler(db *sql.DB) func(c *gin.Context) {
	return func(c *gin.Context) {
		edges, err := mydb.LoadAdjacency(db)
		if err != nil {
			logger.Error("load adjacency", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"edges": edges})
	}
}

// NewMatrixHandler builds a gin handler for the clusters x genomes view.
func NewMatrixHandler(db *sql.DB) func(c *gin.Context) {
	return func(c *gin.Context) {
		m, err := mydb.LoadMatrix(db)
		if err != nil {
			logger.Error("load matrix", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"cluster_ids": m.ClusterIDs,
			"genome_ids":  m.GenomeIDs,
			"counts":      m.Counts,
		})
	}
}

// NewRegionsHandler builds a gin handler for the variable-region query.
// The adjacency graph is rebuilt from the stored edge list per request;
// the tables are small enough that caching is not worth the staleness.
func NewRegionsHandler(db *sql.DB) func(c *gin.Context) {
	return func(c *gin.Context) {
		flank := 1
		if raw := c.Query("flank"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n < 1 {
				c.JSON(http.StatusBadRequest, gin.H{"error": "flank must be a positive integer"})
				return
			}
			flank = n
		}

		graph, err := mydb.LoadAdjacencyGraph(db)
		if err != nil {
			logger.Error("load adjacency", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}

		regions := graph.VariableRegions(flank)
		type regionView struct {
			Center string   `json:"center"`
			Groups []string `json:"groups"`
		}
		out := make([]regionView, 0, len(regions))
		for _, r := range regions {
			rv := regionView{Center: mydb.ClusterID(r.Center)}
			for _, g := range r.Groups {
				rv.Groups = append(rv.Groups, mydb.ClusterID(g))
			}
			out = append(out, rv)
		}
		c.JSON(http.StatusOK, gin.H{"flank": flank, "regions": out})
	}
}
