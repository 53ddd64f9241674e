package bot

import (
	"context"

	"github.com/golang/glog"

	"github.com/robotalks/courier/pkg/courier"
	fx "github.com/robotalks/courier/pkg/framework"
	"github.com/robotalks/courier/pkg/sim/car"
	"github.com/robotalks/courier/pkg/sim/visualization/see"
	"github.com/robotalks/courier/pkg/supervisor"
)

// Hardware is the simulated vehicle. It survives reboots.
type Hardware struct {
	Chassis *car.Chassis
	Panel   *car.Panel
	See     *see.Adapter
}

// NewHardware creates the simulated vehicle.
func (c *Config) NewHardware() *Hardware {
	hw := &Hardware{
		Chassis: c.Car.NewChassis(ControllerType + "/car"),
		Panel:   &car.Panel{},
	}
	if c.See.Enabled {
		hw.See = c.See.NewAdapter(hw.Chassis.World()).Subscribe(hw.Chassis)
	}
	return hw
}

// Vehicle is a booted system ready to run.
type Vehicle struct {
	Loop       *fx.Loop
	Controller *courier.Controller
	Bot        *Bot
	Hardware   *Hardware
}

// NewVehicle boots the controller on hw. restarter is invoked when reverse
// playback completes.
func (c *Config) NewVehicle(hw *Hardware, restarter courier.Restarter) (*Vehicle, error) {
	v := &Vehicle{Loop: fx.NewLoop(), Hardware: hw}
	v.Loop.Interval = c.LoopInterval

	ticks := c.Timing.NewSource()
	v.Controller = c.Courier.NewController(ticks, hw.Chassis, hw.Chassis, restarter)
	v.Controller.Display, v.Controller.Buzzer = hw.Panel, hw.Panel

	l1env, err := c.L1.NewEnv()
	if err != nil {
		return nil, err
	}
	v.Bot = New(v.Controller, l1env.Registrar)

	serial, err := c.Link.Open()
	if err != nil {
		return nil, err
	}
	if serial != nil {
		v.Loop.Add(serial)
	}
	v.Loop.Add(hw.Chassis, l1env, v.Bot)
	v.Loop.AddRunnable(ticks)
	if hw.See != nil {
		v.Loop.Add(hw.See)
	}
	glog.Infof("courier %s: registries %v", c.L1.Info.Ref.Name(), l1env.RegistryURLs)
	return v, nil
}

// Run starts the controller and runs the loop until ctx is canceled or a
// component fails. The chassis is stopped on return.
func (v *Vehicle) Run(ctx context.Context) error {
	defer v.Hardware.Chassis.Stop()
	v.Controller.Start()
	return v.Loop.Run(ctx)
}

// Boot returns the supervisor.BootFunc booting a Vehicle on hw.
func (c *Config) Boot(hw *Hardware) supervisor.BootFunc {
	return func(ctx context.Context, restarter courier.Restarter) error {
		v, err := c.NewVehicle(hw, restarter)
		if err != nil {
			return err
		}
		return v.Run(ctx)
	}
}
