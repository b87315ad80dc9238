package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/tarstars/robustboost"
)

func decodeConfig(srcConfig string, out interface{}) error {
	file, err := os.Open(srcConfig)
	if err != nil {
		return err
	}
	defer file.Close()
	return json.NewDecoder(file).Decode(out)
}

type TrainConfig struct {
	FileNameTrainMatrix string                      `json:"filename_train_matrix"`
	FileNameGradPairs   string                       `json:"filename_grad_pairs"`
	FileNameModel       string                       `json:"filename_model"`
	NStages             int                          `json:"n_stages"`
	Param               robustboost.TrainParam       `json:"param"`
	UpdaterName         string                       `json:"updater"`
}

func train(srcConfig string) error {
	var cfg TrainConfig
	if err := decodeConfig(srcConfig, &cfg); err != nil {
		return err
	}

	matrix, err := robustboost.LoadColumnMatrixNpy(cfg.FileNameTrainMatrix)
	if err != nil {
		return err
	}
	gpair, err := robustboost.LoadGradientPairsNpy(cfg.FileNameGradPairs)
	if err != nil {
		return err
	}

	updaterName := cfg.UpdaterName
	if updaterName == "" {
		updaterName = "robust_grow_colmaker"
	}
	updater := robustboost.NewUpdater(updaterName)
	if updater == nil {
		return fmt.Errorf("unknown updater: %s", updaterName)
	}

	model := robustboost.NewModel(cfg.Param)
	for stage := 0; stage < cfg.NStages; stage++ {
		log.Printf("tree %d/%d\n", stage+1, cfg.NStages)
		tree := robustboost.NewRegTree()
		if err := updater.Update(gpair, matrix, []*robustboost.RegTree{tree}); err != nil {
			return err
		}
		model.Trees = append(model.Trees, tree)
	}

	return model.Save(cfg.FileNameModel)
}

type GraphConfig struct {
	ModelFileName     string `json:"filename_model"`
	FigureType        string `json:"figure_type"`
	PicturesDirectory string `json:"pictures_directory"`
	DumpPrefix        string `json:"dump_prefix"`
}

func graph(srcConfig string) error {
	var cfg GraphConfig
	if err := decodeConfig(srcConfig, &cfg); err != nil {
		return err
	}
	model, err := robustboost.LoadModel(cfg.ModelFileName)
	if err != nil {
		return err
	}
	return robustboost.RenderTrees(model, cfg.DumpPrefix, cfg.FigureType, cfg.PicturesDirectory)
}

func main() {
	runMode := flag.String("mode", "train", "you can select either 'train' or 'graph' mode")
	config := flag.String("config", "robustboost_config.json", "a config file for the run of the program")
	flag.Parse()

	modes := map[string]func(string) error{
		"train": train,
		"graph":  graph,
	}

	run, ok := modes[*runMode]
	if !ok {
		log.Fatalf("unknown mode %q", *runMode)
	}
	if err := run(*config); err != nil {
		log.Fatal(err)
	}
}
