// 写入演示用的测验历史
//
// 页面挂载时优先读取本地保存的历史记录，此脚本用于开发环境准备数据。
//
// 用法: go run scripts/seed_history.go -user user:1 [-file records.json]

package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"toothquest_portal/internal/config"
	"toothquest_portal/internal/model"
	"toothquest_portal/internal/repository"
	"toothquest_portal/pkg/database"
	"toothquest_portal/pkg/logger"

	"gopkg.in/yaml.v3"
)

func main() {
	userKey := flag.String("user", "", "用户标识，例如 user:1")
	file := flag.String("file", "", "原始记录 JSON 文件，缺省时使用内置示例数据")
	flag.Parse()

	if *userKey == "" {
		log.Fatal("必须指定 -user")
	}

	data, err := os.ReadFile("configs/config.yaml")
	if err != nil {
		log.Fatalf("无法读取配置文件: %v", err)
	}

	var cfg config.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		log.Fatalf("解析配置文件失败: %v", err)
	}

	logger.InitLogger(&cfg)

	db, err := database.InitDB(&cfg.Database, true)
	if err != nil {
		log.Fatalf("数据库连接失败: %v", err)
	}

	records := model.SampleQuizHistory()
	if *file != "" {
		raw, err := os.ReadFile(*file)
		if err != nil {
			log.Fatalf("无法读取记录文件: %v", err)
		}
		if err := json.Unmarshal(raw, &records); err != nil {
			log.Fatalf("记录文件必须是 JSON 数组: %v", err)
		}
	}

	repo := repository.NewHistoryRepository(db)
	if err := repo.Upsert(context.Background(), *userKey, records); err != nil {
		log.Fatalf("写入失败: %v", err)
	}
	log.Printf("已为 %s 写入 %d 条测验记录", *userKey, len(records))
}
